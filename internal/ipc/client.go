package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client handles IPC communication with the daemon.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client.
func NewClient() *Client {
	socketPath, err := SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status != "OK" {
		return &resp, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// GetStatus fetches daemon status.
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}
	var data StatusData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &data, nil
}

// ListLayouts fetches the built-in layout list.
func (c *Client) ListLayouts() (*LayoutsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListLayouts})
	if err != nil {
		return nil, err
	}
	var data LayoutsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse layouts data: %w", err)
	}
	return &data, nil
}

// SwitchLayout switches the layout; monitor -1 targets the focused monitor.
func (c *Client) SwitchLayout(layout, monitor int) error {
	payload, err := json.Marshal(SwitchLayoutPayload{Layout: layout, Monitor: monitor})
	if err != nil {
		return err
	}
	_, err = c.sendRequest(&Request{Command: CommandSwitchLayout, Payload: payload})
	return err
}

// CycleWindow cycles ring focus in the focused container.
func (c *Client) CycleWindow(direction string) error {
	return c.sendDirection(CommandCycleWindow, direction)
}

// MoveWindow moves the focused window to the adjacent container.
func (c *Client) MoveWindow(direction string) error {
	return c.sendDirection(CommandMoveWindow, direction)
}

// FocusContainer moves container focus.
func (c *Client) FocusContainer(direction string) error {
	return c.sendDirection(CommandFocusContainer, direction)
}

// Retile requests an immediate retile and returns its result string.
func (c *Client) Retile() (string, error) {
	resp, err := c.sendRequest(&Request{Command: CommandRetile})
	if err != nil {
		return "", err
	}
	var data RetileData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse retile data: %w", err)
	}
	return data.Result, nil
}

// Reload asks the daemon to reload its configuration.
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

func (c *Client) sendDirection(cmd CommandType, direction string) error {
	payload, err := json.Marshal(DirectionPayload{Direction: direction})
	if err != nil {
		return err
	}
	_, err = c.sendRequest(&Request{Command: cmd, Payload: payload})
	return err
}
