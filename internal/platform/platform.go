package platform

import (
	"context"
	"time"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// MonitorID is a platform-neutral monitor identifier.
type MonitorID int

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// MaxX returns the exclusive right edge of the rectangle.
func (r Rect) MaxX() int { return r.X + r.Width }

// MaxY returns the exclusive bottom edge of the rectangle.
func (r Rect) MaxY() int { return r.Y + r.Height }

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() int { return r.X + r.Width/2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() int { return r.Y + r.Height/2 }

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// WindowInfo is an immutable snapshot of a top-level window.
type WindowInfo struct {
	ID          WindowID
	Title       string
	AppName     string
	BundleID    string
	Frame       Rect
	IsResizable bool
	IsFloating  bool
	OwnerPID    int
}

// MonitorInfo describes a connected monitor and its usable work area.
type MonitorInfo struct {
	ID           MonitorID
	Name         string
	Frame        Rect
	VisibleFrame Rect
	IsMain       bool
}

// EventKind classifies a window-system change notification.
type EventKind int

const (
	EventWindowOpened EventKind = iota
	EventWindowClosed
	EventWindowFocused
	EventWindowMoved
	EventWindowResized
	EventMonitorsChanged
)

// String returns the event kind name for logging.
func (k EventKind) String() string {
	switch k {
	case EventWindowOpened:
		return "opened"
	case EventWindowClosed:
		return "closed"
	case EventWindowFocused:
		return "focused"
	case EventWindowMoved:
		return "moved"
	case EventWindowResized:
		return "resized"
	case EventMonitorsChanged:
		return "monitors-changed"
	default:
		return "unknown"
	}
}

// Event is a single change notification from the window system.
// Window is zero for EventMonitorsChanged. Frame is only populated for
// moved/resized events.
type Event struct {
	Kind   EventKind
	Window WindowID
	Info   *WindowInfo
	Frame  Rect
}

// Placement is one window's target geometry produced by the layout engine.
type Placement struct {
	WindowID WindowID
	OwnerPID int
	Frame    Rect
}

// WindowSource enumerates windows and streams change notifications.
type WindowSource interface {
	// VisibleWindows returns a snapshot of all visible top-level windows.
	VisibleWindows() ([]WindowInfo, error)
	// FocusedWindow returns the window holding input focus, or nil when the
	// window system reports none.
	FocusedWindow() (*WindowInfo, error)
}

// MonitorSource enumerates connected monitors.
type MonitorSource interface {
	ConnectedMonitors() ([]MonitorInfo, error)
}

// EventSource delivers window and monitor change notifications. Events may
// originate on window-system callback goroutines; consumers are expected to
// marshal them onto their own serialized context.
type EventSource interface {
	// Subscribe returns a channel of events. The channel is closed when the
	// source shuts down.
	Subscribe() (<-chan Event, error)
}

// Positioner applies window geometry and stacking order.
type Positioner interface {
	// ApplyBatch positions every placement in the batch. A duration of zero
	// positions instantly; otherwise geometry is interpolated over the
	// duration and cancelling ctx aborts the remaining steps. A single
	// window's failure does not abort the batch.
	ApplyBatch(ctx context.Context, placements []Placement, duration time.Duration) error
	// Raise restacks the given windows in slice order; the last window ends
	// topmost.
	Raise(ids []WindowID) error
}
