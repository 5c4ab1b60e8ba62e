package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/accordwm/accordwm/internal/orchestrator"
	"github.com/accordwm/accordwm/internal/platform"
	"github.com/accordwm/accordwm/internal/tiling"
)

// Server handles IPC requests from clients.
type Server struct {
	socketPath   string
	listener     net.Listener
	orch         *orchestrator.Orchestrator
	logger       *log.Logger
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. Writes to reloadChan request a config
// reload from the daemon.
func NewServer(orch *orchestrator.Orchestrator, logger *log.Logger, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove stale socket from a previous run.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		orch:       orch,
		logger:     logger,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)
	go s.acceptLoop()
	return nil
}

// Stop shuts the listener down and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			down := s.shuttingDown
			s.shutdownMu.Unlock()
			if down {
				return
			}
			s.logger.Warn("IPC accept failed", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return
	}

	req, err := ParseRequest(line)
	var resp *Response
	if err != nil {
		resp = NewErrorResponse(err.Error())
	} else {
		resp = s.handleRequest(req)
	}

	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal IPC response", "error", err)
		return
	}
	conn.Write(append(data, '\n'))
}

func (s *Server) handleRequest(req *Request) *Response {
	ctx := context.Background()

	switch req.Command {
	case CommandGetStatus:
		return s.handleStatus()

	case CommandListLayouts:
		return s.handleListLayouts()

	case CommandSwitchLayout:
		var payload SwitchLayoutPayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return NewErrorResponse(fmt.Sprintf("invalid payload: %v", err))
		}
		layoutID := tiling.LayoutID(payload.Layout)
		if !layoutID.Valid() {
			return NewErrorResponse(fmt.Sprintf("unknown layout %d", payload.Layout))
		}
		var monitor *int
		if payload.Monitor >= 0 {
			monitor = &payload.Monitor
		}
		s.orch.SwitchLayout(ctx, layoutID, monitorIDPtr(monitor))
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandCycleWindow:
		dir, errResp := parseDirection(req.Payload)
		if errResp != nil {
			return errResp
		}
		s.orch.CycleWindow(ctx, dir)
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandMoveWindow:
		dir, errResp := parseDirection(req.Payload)
		if errResp != nil {
			return errResp
		}
		s.orch.MoveWindowToContainer(ctx, dir)
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandFocusContainer:
		dir, errResp := parseDirection(req.Payload)
		if errResp != nil {
			return errResp
		}
		s.orch.FocusContainer(ctx, dir)
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandRetile:
		result := s.orch.RetileNow(ctx)
		resp, err := NewOKResponse(RetileData{Result: result.String()})
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return resp

	case CommandReload:
		select {
		case s.reloadChan <- struct{}{}:
		default:
		}
		resp, _ := NewOKResponse(nil)
		return resp

	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func (s *Server) handleStatus() *Response {
	states := s.orch.MonitorStates()
	monitors := make([]MonitorStatus, 0, len(states))
	for _, st := range states {
		monitors = append(monitors, MonitorStatus{
			MonitorID:  int(st.MonitorID),
			Layout:     st.Layout.String(),
			Containers: st.Containers,
			Windows:    st.Windows,
		})
	}
	resp, err := NewOKResponse(StatusData{
		Monitors:      monitors,
		LastResult:    s.orch.LastResult().String(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleListLayouts() *Response {
	layouts := make([]LayoutInfo, 0, 9)
	for id := tiling.LayoutMonocle; id <= tiling.LayoutFiveColumns; id++ {
		layouts = append(layouts, LayoutInfo{
			ID:         int(id),
			Name:       id.String(),
			Containers: id.ContainerCount(),
		})
	}
	resp, err := NewOKResponse(LayoutsData{Layouts: layouts})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func monitorIDPtr(id *int) *platform.MonitorID {
	if id == nil {
		return nil
	}
	mid := platform.MonitorID(*id)
	return &mid
}

func parseDirection(payload json.RawMessage) (tiling.Direction, *Response) {
	var p DirectionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return 0, NewErrorResponse(fmt.Sprintf("invalid payload: %v", err))
	}
	switch p.Direction {
	case "left":
		return tiling.DirLeft, nil
	case "right":
		return tiling.DirRight, nil
	default:
		return 0, NewErrorResponse(fmt.Sprintf("direction must be left or right, got %q", p.Direction))
	}
}
