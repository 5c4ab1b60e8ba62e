// Package ipc implements the unix-socket control protocol between the
// accordwm CLI and the daemon: newline-delimited JSON requests and responses.
package ipc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CommandType represents different IPC command types.
type CommandType string

const (
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandListLayouts    CommandType = "LIST_LAYOUTS"
	CommandSwitchLayout   CommandType = "SWITCH_LAYOUT"
	CommandCycleWindow    CommandType = "CYCLE_WINDOW"
	CommandMoveWindow     CommandType = "MOVE_WINDOW"
	CommandFocusContainer CommandType = "FOCUS_CONTAINER"
	CommandRetile         CommandType = "RETILE"
	CommandReload         CommandType = "RELOAD"
)

// Request represents an IPC request from client to server.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// MonitorStatus is one monitor's summary in StatusData.
type MonitorStatus struct {
	MonitorID  int    `json:"monitor_id"`
	Layout     string `json:"layout"`
	Containers int    `json:"containers"`
	Windows    int    `json:"windows"`
}

// StatusData represents the data returned by GET_STATUS.
type StatusData struct {
	Monitors      []MonitorStatus `json:"monitors"`
	LastResult    string          `json:"last_result"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	DaemonRunning bool            `json:"daemon_running"`
}

// LayoutsData represents the data returned by LIST_LAYOUTS.
type LayoutsData struct {
	Layouts []LayoutInfo `json:"layouts"`
}

// LayoutInfo names one built-in layout.
type LayoutInfo struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Containers int    `json:"containers"`
}

// SwitchLayoutPayload is the payload for SWITCH_LAYOUT.
type SwitchLayoutPayload struct {
	Layout int `json:"layout"`
	// Monitor targets a specific monitor; -1 means the focused monitor.
	Monitor int `json:"monitor"`
}

// DirectionPayload is the payload for CYCLE_WINDOW, MOVE_WINDOW, and
// FOCUS_CONTAINER. Direction is "left" or "right".
type DirectionPayload struct {
	Direction string `json:"direction"`
}

// RetileData represents the data returned by RETILE.
type RetileData struct {
	Result string `json:"result"`
}

// SocketPath returns the daemon's control socket path.
func SocketPath() (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = fmt.Sprintf("/tmp/accordwm-runtime-%d", os.Getuid())
	}
	if err := os.MkdirAll(runtimeDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return filepath.Join(runtimeDir, "accordwm.sock"), nil
}

// NewOKResponse creates a successful response with optional data.
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}
	return &Response{Status: "OK", Data: dataBytes}, nil
}

// NewErrorResponse creates an error response with a message.
func NewErrorResponse(errMsg string) *Response {
	return &Response{Status: "ERROR", Error: errMsg}
}

// ParseRequest parses a request from JSON bytes.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
