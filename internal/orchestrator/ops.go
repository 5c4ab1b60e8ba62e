package orchestrator

import (
	"context"

	"github.com/accordwm/accordwm/internal/platform"
	"github.com/accordwm/accordwm/internal/tiling"
)

// SwitchLayout switches the target monitor to the given layout and schedules
// a retile. With a nil monitor the monitor owning the focused window is used,
// falling back to the main monitor. Unknown layouts and unresolvable monitors
// are silent no-ops.
func (o *Orchestrator) SwitchLayout(ctx context.Context, to tiling.LayoutID, monitor *platform.MonitorID) {
	if !to.Valid() {
		return
	}
	mon, ok := o.resolveMonitor(monitor)
	if !ok {
		return
	}

	windowFrames := make(map[platform.WindowID]platform.Rect)
	if wins, err := o.windows.VisibleWindows(); err == nil {
		for _, w := range wins {
			windowFrames[w.ID] = w.Frame
		}
	}

	cfg := o.configSnapshot()
	frames := tiling.ContainerFrames(to, mon.VisibleFrame, cfg.Margin, cfg.Padding)

	o.mu.Lock()
	st := o.ensureStateLocked(mon.ID)
	st.SwitchLayout(to, frames, windowFrames)
	o.mu.Unlock()

	o.logger.Info("layout switched", "monitor", mon.ID, "layout", to.String())
	o.scheduleRetile(ctx)
}

// CycleWindow advances or retreats ring focus in the focused window's
// container, then schedules a retile. Silent no-op without a resolvable
// focused window.
func (o *Orchestrator) CycleWindow(ctx context.Context, dir tiling.Direction) {
	id, st := o.resolveFocusedWindow()
	if id == 0 || st == nil {
		return
	}
	o.mu.Lock()
	st.CycleWindow(dir, id)
	o.mu.Unlock()
	o.scheduleRetile(ctx)
}

// MoveWindowToContainer moves the focused window into the adjacent container
// in the given direction, then schedules a retile. Silent no-op without a
// resolvable focused window or at a boundary.
func (o *Orchestrator) MoveWindowToContainer(ctx context.Context, dir tiling.Direction) {
	id, st := o.resolveFocusedWindow()
	if id == 0 || st == nil {
		return
	}
	o.mu.Lock()
	st.MoveWindow(id, dir)
	o.mu.Unlock()
	o.scheduleRetile(ctx)
}

// FocusContainer moves the focused-container pointer in the given direction,
// then schedules a retile. Silent no-op without a resolvable focused window.
func (o *Orchestrator) FocusContainer(ctx context.Context, dir tiling.Direction) {
	id, st := o.resolveFocusedWindow()
	if id == 0 || st == nil {
		return
	}
	o.mu.Lock()
	st.SetFocusedContainer(dir)
	o.mu.Unlock()
	o.scheduleRetile(ctx)
}

// resolveFocusedWindow finds the effective focused window and its monitor
// state. When the OS reports no focus (the focused window was just hidden or
// closed) it falls back to the last known focus, then to any container's ring
// focus, so outward-facing operations keep working.
func (o *Orchestrator) resolveFocusedWindow() (platform.WindowID, *tiling.MonitorState) {
	var id platform.WindowID
	if info, err := o.windows.FocusedWindow(); err == nil && info != nil {
		id = info.ID
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if id == 0 {
		id = o.lastFocused
	}
	if id != 0 {
		for _, st := range o.states {
			if st.ContainerForWindow(id) != nil {
				return id, st
			}
		}
	}

	// Stale-focus recovery: treat some remaining ring focus as effective.
	for _, st := range o.states {
		fc := st.FocusedContainer()
		if fc == nil {
			continue
		}
		if f, ok := fc.FocusedWindow(); ok {
			return f, st
		}
	}
	for _, st := range o.states {
		for _, c := range st.Containers() {
			if f, ok := c.FocusedWindow(); ok {
				return f, st
			}
		}
	}
	return 0, nil
}

// resolveMonitor picks the explicit monitor, else the one owning the focused
// window, else the main monitor.
func (o *Orchestrator) resolveMonitor(explicit *platform.MonitorID) (platform.MonitorInfo, bool) {
	monitors, err := o.monitors.ConnectedMonitors()
	if err != nil || len(monitors) == 0 {
		return platform.MonitorInfo{}, false
	}
	if explicit != nil {
		for _, m := range monitors {
			if m.ID == *explicit {
				return m, true
			}
		}
		return platform.MonitorInfo{}, false
	}

	if info, err := o.windows.FocusedWindow(); err == nil && info != nil {
		for _, m := range monitors {
			if m.Frame.Contains(info.Frame.CenterX(), info.Frame.CenterY()) {
				return m, true
			}
		}
	}
	for _, m := range monitors {
		if m.IsMain {
			return m, true
		}
	}
	return monitors[0], true
}
