//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/accordwm/accordwm/internal/x11"
)

// X11Backend implements WindowSource, MonitorSource, EventSource, and
// Positioner over an X11 connection.
type X11Backend struct {
	conn *x11.Connection
	fps  int
}

var (
	_ WindowSource  = (*X11Backend)(nil)
	_ MonitorSource = (*X11Backend)(nil)
	_ EventSource   = (*X11Backend)(nil)
	_ Positioner    = (*X11Backend)(nil)
)

// NewX11Backend wraps an existing X11 connection. fps controls animation
// interpolation granularity.
func NewX11Backend(conn *x11.Connection, fps int) *X11Backend {
	if fps < 1 {
		fps = 60
	}
	return &X11Backend{conn: conn, fps: fps}
}

// VisibleWindows returns a snapshot of all visible top-level windows.
func (b *X11Backend) VisibleWindows() ([]WindowInfo, error) {
	attrs, err := b.conn.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}
	windows := make([]WindowInfo, 0, len(attrs))
	for _, a := range attrs {
		windows = append(windows, infoFromAttrs(a))
	}
	return windows, nil
}

// FocusedWindow returns the focused window, or nil when the server reports
// none.
func (b *X11Backend) FocusedWindow() (*WindowInfo, error) {
	active, err := b.conn.ActiveWindow()
	if err != nil {
		return nil, fmt.Errorf("failed to get active window: %w", err)
	}
	if active == 0 {
		return nil, nil
	}
	attrs, ok := b.conn.WindowAttrs(active)
	if !ok {
		return nil, nil
	}
	info := infoFromAttrs(attrs)
	return &info, nil
}

// ConnectedMonitors enumerates active monitors via RandR.
func (b *X11Backend) ConnectedMonitors() ([]MonitorInfo, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, fmt.Errorf("failed to get monitors: %w", err)
	}
	out := make([]MonitorInfo, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, MonitorInfo{
			ID:           MonitorID(m.ID),
			Name:         m.Name,
			Frame:        Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			VisibleFrame: Rect{X: m.WorkX, Y: m.WorkY, Width: m.WorkW, Height: m.WorkH},
			IsMain:       m.Primary,
		})
	}
	return out, nil
}

// Subscribe maps raw X11 changes to platform events.
func (b *X11Backend) Subscribe() (<-chan Event, error) {
	raw, err := b.conn.WatchChanges()
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, 128)
	go func() {
		defer close(ch)
		for change := range raw {
			if ev, ok := b.translate(change); ok {
				ch <- ev
			}
		}
	}()
	return ch, nil
}

func (b *X11Backend) translate(change x11.Change) (Event, bool) {
	switch change.Kind {
	case x11.ChangeOpened:
		ev := Event{Kind: EventWindowOpened, Window: WindowID(change.Window)}
		if attrs, ok := b.conn.WindowAttrs(change.Window); ok {
			info := infoFromAttrs(attrs)
			ev.Info = &info
		}
		return ev, true
	case x11.ChangeClosed:
		return Event{Kind: EventWindowClosed, Window: WindowID(change.Window)}, true
	case x11.ChangeFocused:
		return Event{Kind: EventWindowFocused, Window: WindowID(change.Window)}, true
	case x11.ChangeConfigured:
		// Surfaced as moved; the orchestrator ignores user geometry either way.
		return Event{
			Kind:   EventWindowMoved,
			Window: WindowID(change.Window),
			Frame:  Rect{X: change.X, Y: change.Y, Width: change.Width, Height: change.Height},
		}, true
	case x11.ChangeScreen:
		return Event{Kind: EventMonitorsChanged}, true
	default:
		return Event{}, false
	}
}

// ApplyBatch positions every placement. Zero duration applies instantly;
// otherwise frames are interpolated from each window's current geometry over
// the duration, and a cancelled ctx abandons the remaining steps. One
// window's failure never aborts the batch.
func (b *X11Backend) ApplyBatch(ctx context.Context, placements []Placement, duration time.Duration) error {
	if len(placements) == 0 {
		return nil
	}
	if duration <= 0 {
		return b.applyInstant(placements)
	}

	type tween struct {
		p     Placement
		start Rect
	}
	tweens := make([]tween, 0, len(placements))
	for _, p := range placements {
		attrs, ok := b.conn.WindowAttrs(xproto.Window(p.WindowID))
		if !ok {
			// Window vanished between snapshot and batch; skip it.
			continue
		}
		tweens = append(tweens, tween{
			p:     p,
			start: Rect{X: attrs.X, Y: attrs.Y, Width: attrs.Width, Height: attrs.Height},
		})
	}
	if len(tweens) == 0 {
		return nil
	}

	steps := int(duration / (time.Second / time.Duration(b.fps)))
	if steps < 2 {
		return b.applyInstant(placements)
	}
	interval := duration / time.Duration(steps)

	var firstErr error
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for step := 1; step <= steps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		for _, t := range tweens {
			f := lerpRect(t.start, t.p.Frame, step, steps)
			if err := b.conn.MoveResizeWindow(xproto.Window(t.p.WindowID), f.X, f.Y, f.Width, f.Height); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("window %d: %w", t.p.WindowID, err)
			}
		}
	}
	return firstErr
}

func (b *X11Backend) applyInstant(placements []Placement) error {
	var errs []error
	for _, p := range placements {
		if err := b.conn.MoveResizeWindow(xproto.Window(p.WindowID), p.Frame.X, p.Frame.Y, p.Frame.Width, p.Frame.Height); err != nil {
			errs = append(errs, fmt.Errorf("window %d: %w", p.WindowID, err))
		}
	}
	return errors.Join(errs...)
}

// Raise restacks windows in slice order; the last ends topmost.
func (b *X11Backend) Raise(ids []WindowID) error {
	var errs []error
	for _, id := range ids {
		if err := b.conn.RaiseWindow(xproto.Window(id)); err != nil {
			errs = append(errs, fmt.Errorf("window %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func infoFromAttrs(a x11.WindowAttrs) WindowInfo {
	return WindowInfo{
		ID:          WindowID(a.ID),
		Title:       a.Title,
		AppName:     a.Class,
		BundleID:    a.Instance,
		Frame:       Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height},
		IsResizable: a.Resizable,
		IsFloating:  a.Floating,
		OwnerPID:    a.PID,
	}
}

func lerpRect(from, to Rect, step, steps int) Rect {
	if step >= steps {
		return to
	}
	lerp := func(a, b int) int { return a + (b-a)*step/steps }
	return Rect{
		X:      lerp(from.X, to.X),
		Y:      lerp(from.Y, to.Y),
		Width:  lerp(from.Width, to.Width),
		Height: lerp(from.Height, to.Height),
	}
}
