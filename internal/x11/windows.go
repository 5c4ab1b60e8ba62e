package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowAttrs is the raw per-window snapshot the platform backend turns into
// a WindowInfo.
type WindowAttrs struct {
	ID        xproto.Window
	Title     string
	Class     string
	Instance  string
	X         int
	Y         int
	Width     int
	Height    int
	Resizable bool
	Floating  bool
	PID       int
}

// ListWindows returns all normal, visible windows on the current desktop.
func (c *Connection) ListWindows() ([]WindowAttrs, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, err
	}

	currentDesktop, desktopErr := ewmh.CurrentDesktopGet(c.XUtil)
	hasCurrentDesktop := desktopErr == nil

	windows := make([]WindowAttrs, 0, len(clients))
	for _, windowID := range clients {
		if !c.isNormalWindow(windowID) {
			continue
		}
		if hasCurrentDesktop {
			desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
			if err == nil && desktop != uint(0xFFFFFFFF) && desktop != currentDesktop {
				continue
			}
		}
		if c.isHiddenOrFullscreen(windowID) {
			continue
		}

		attrs, ok := c.WindowAttrs(windowID)
		if !ok {
			continue
		}
		windows = append(windows, attrs)
	}

	return windows, nil
}

// WindowAttrs fetches a single window's snapshot. The second return is false
// when the window's geometry can no longer be read (typically a race with the
// window closing).
func (c *Connection) WindowAttrs(windowID xproto.Window) (WindowAttrs, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return WindowAttrs{}, false
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return WindowAttrs{}, false
	}

	attrs := WindowAttrs{
		ID:        windowID,
		Title:     c.windowTitle(windowID),
		X:         int(translate.DstX),
		Y:         int(translate.DstY),
		Width:     int(geom.Width),
		Height:    int(geom.Height),
		Resizable: c.isResizable(windowID),
		Floating:  c.isFloatingType(windowID),
	}
	if wmClass, err := icccm.WmClassGet(c.XUtil, windowID); err == nil {
		attrs.Class = strings.TrimSpace(wmClass.Class)
		attrs.Instance = strings.TrimSpace(wmClass.Instance)
	}
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		attrs.PID = int(pid)
	}
	return attrs, true
}

// ActiveWindow returns the focused window id, 0 when none.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore geometry requests until unmaximized.
	c.unmaximize(windowID)

	win := xwindow.New(c.XUtil, windowID)
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation.
		win.MoveResize(x, y, width, height)
	}
	return nil
}

// RaiseWindow restacks a window to the top.
func (c *Connection) RaiseWindow(windowID xproto.Window) error {
	return ewmh.RestackWindow(c.XUtil, windowID)
}

func (c *Connection) unmaximize(windowID xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			ewmh.WmStateReq(c.XUtil, windowID, 0, state)
		}
	}
}

// isResizable reads WM_NORMAL_HINTS; a window whose min and max sizes are
// pinned equal cannot be resized.
func (c *Connection) isResizable(windowID xproto.Window) bool {
	hints, err := icccm.WmNormalHintsGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	hasMin := hints.Flags&icccm.SizeHintPMinSize != 0
	hasMax := hints.Flags&icccm.SizeHintPMaxSize != 0
	if !hasMin || !hasMax {
		return true
	}
	return hints.MinWidth != hints.MaxWidth || hints.MinHeight != hints.MaxHeight
}

// isFloatingType treats dialogs, utilities, and toolbars as floating: they
// participate in no container's accordion.
func (c *Connection) isFloatingType(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_DIALOG",
			"_NET_WM_WINDOW_TYPE_UTILITY",
			"_NET_WM_WINDOW_TYPE_TOOLBAR":
			return true
		}
	}
	return false
}

func (c *Connection) isNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL",
			"_NET_WM_WINDOW_TYPE_DIALOG",
			"_NET_WM_WINDOW_TYPE_UTILITY",
			"_NET_WM_WINDOW_TYPE_TOOLBAR":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

func (c *Connection) isHiddenOrFullscreen(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN", "_NET_WM_STATE_FULLSCREEN":
			return true
		}
	}
	return false
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	return ""
}
