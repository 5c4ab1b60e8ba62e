package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ChangeKind classifies a raw X11 change notification.
type ChangeKind int

const (
	ChangeOpened ChangeKind = iota
	ChangeClosed
	ChangeFocused
	ChangeConfigured
	ChangeScreen
)

// Change is one raw notification from the X server. Geometry fields are only
// populated for ChangeConfigured.
type Change struct {
	Kind   ChangeKind
	Window xproto.Window
	X      int
	Y      int
	Width  int
	Height int
}

// WatchChanges subscribes to root-window property and structure events and
// streams them as Changes. Window open/close is derived by diffing
// _NET_CLIENT_LIST; focus from _NET_ACTIVE_WINDOW. ConfigureNotify on child
// windows surfaces as ChangeConfigured, on the root as ChangeScreen. The
// channel is closed when the X event loop exits; events are dropped rather
// than blocking the X callback goroutine when the consumer falls behind.
func (c *Connection) WatchChanges() (<-chan Change, error) {
	root := xwindow.New(c.XUtil, c.Root)
	err := root.Listen(
		xproto.EventMaskPropertyChange,
		xproto.EventMaskSubstructureNotify,
		xproto.EventMaskStructureNotify,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on root window: %w", err)
	}

	ch := make(chan Change, 128)
	known := make(map[xproto.Window]bool)
	if clients, err := ewmh.ClientListGet(c.XUtil); err == nil {
		for _, w := range clients {
			known[w] = true
		}
	}
	var lastActive xproto.Window

	emit := func(ev Change) {
		select {
		case ch <- ev:
		default:
		}
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		switch name {
		case "_NET_CLIENT_LIST":
			clients, err := ewmh.ClientListGet(xu)
			if err != nil {
				return
			}
			current := make(map[xproto.Window]bool, len(clients))
			for _, w := range clients {
				current[w] = true
				if !known[w] {
					emit(Change{Kind: ChangeOpened, Window: w})
				}
			}
			for w := range known {
				if !current[w] {
					emit(Change{Kind: ChangeClosed, Window: w})
				}
			}
			known = current
		case "_NET_ACTIVE_WINDOW":
			active, err := ewmh.ActiveWindowGet(xu)
			if err != nil || active == lastActive {
				return
			}
			lastActive = active
			if active != 0 {
				emit(Change{Kind: ChangeFocused, Window: active})
			}
		}
	}).Connect(c.XUtil, c.Root)

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if ev.Window == c.Root {
			emit(Change{Kind: ChangeScreen})
			return
		}
		emit(Change{
			Kind:   ChangeConfigured,
			Window: ev.Window,
			X:      int(ev.X),
			Y:      int(ev.Y),
			Width:  int(ev.Width),
			Height: int(ev.Height),
		})
	}).Connect(c.XUtil, c.Root)

	go func() {
		xevent.Main(c.XUtil)
		close(ch)
	}()

	return ch, nil
}
