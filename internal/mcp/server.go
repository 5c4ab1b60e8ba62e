// Package mcp exposes the daemon's tiling operations as MCP tools over
// stdio. Every tool proxies through the IPC socket, so the daemon must be
// running.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/accordwm/accordwm/internal/ipc"
)

const (
	ServerName    = "accordwm"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for tiling control.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates a new MCP server backed by the daemon's IPC socket.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get the tiling daemon status: per-monitor layout, container and window counts, last tiling result, and uptime.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List the built-in layouts with their IDs and container counts.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_layout",
		Description: "Switch the active layout on a monitor. Windows are redistributed into the new layout's containers, preferring remembered assignments and spatial proximity.",
	}, s.handleSwitchLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cycle_window",
		Description: "Cycle the focused container's window ring left or right, bringing the next window to the front of the accordion.",
	}, s.handleCycleWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move the focused window to the adjacent container in the given direction.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_container",
		Description: "Move container focus left or right and raise that container's front window.",
	}, s.handleFocusContainer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "retile",
		Description: "Trigger an immediate tiling pass, bypassing the debounce. Returns the pass result.",
	}, s.handleRetile)
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	out := GetStatusOutput{
		LastResult:    status.LastResult,
		UptimeSeconds: status.UptimeSeconds,
		DaemonRunning: status.DaemonRunning,
	}
	for _, m := range status.Monitors {
		out.Monitors = append(out.Monitors, MonitorStatus{
			MonitorID:  m.MonitorID,
			Layout:     m.Layout,
			Containers: m.Containers,
			Windows:    m.Windows,
		})
	}
	return nil, out, nil
}

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	layouts, err := s.client.ListLayouts()
	if err != nil {
		return nil, ListLayoutsOutput{}, err
	}
	out := ListLayoutsOutput{}
	for _, l := range layouts.Layouts {
		out.Layouts = append(out.Layouts, LayoutInfo{
			ID:         l.ID,
			Name:       l.Name,
			Containers: l.Containers,
		})
	}
	return nil, out, nil
}

func (s *Server) handleSwitchLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchLayoutInput) (*mcpsdk.CallToolResult, SwitchLayoutOutput, error) {
	monitor := -1
	if args.Monitor != nil {
		monitor = *args.Monitor
	}
	if err := s.client.SwitchLayout(args.Layout, monitor); err != nil {
		return nil, SwitchLayoutOutput{}, err
	}
	return nil, SwitchLayoutOutput{Layout: fmt.Sprintf("%d", args.Layout)}, nil
}

func (s *Server) handleCycleWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args DirectionInput) (*mcpsdk.CallToolResult, DirectionOutput, error) {
	if err := s.client.CycleWindow(args.Direction); err != nil {
		return nil, DirectionOutput{}, err
	}
	return nil, DirectionOutput{Applied: true}, nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args DirectionInput) (*mcpsdk.CallToolResult, DirectionOutput, error) {
	if err := s.client.MoveWindow(args.Direction); err != nil {
		return nil, DirectionOutput{}, err
	}
	return nil, DirectionOutput{Applied: true}, nil
}

func (s *Server) handleFocusContainer(_ context.Context, _ *mcpsdk.CallToolRequest, args DirectionInput) (*mcpsdk.CallToolResult, DirectionOutput, error) {
	if err := s.client.FocusContainer(args.Direction); err != nil {
		return nil, DirectionOutput{}, err
	}
	return nil, DirectionOutput{Applied: true}, nil
}

func (s *Server) handleRetile(_ context.Context, _ *mcpsdk.CallToolRequest, _ RetileInput) (*mcpsdk.CallToolResult, RetileOutput, error) {
	result, err := s.client.Retile()
	if err != nil {
		return nil, RetileOutput{}, err
	}
	return nil, RetileOutput{Result: result}, nil
}
