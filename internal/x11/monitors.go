package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display. Work is the frame minus panels and
// docks.
type Monitor struct {
	ID      int
	Name    string
	X       int
	Y       int
	Width   int
	Height  int
	WorkX   int
	WorkY   int
	WorkW   int
	WorkH   int
	Primary bool
}

// GetMonitors retrieves all active monitors using XRandR. The RandR primary
// output flags the primary monitor; without one the first monitor is primary.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	primary := xproto.Window(0)
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = xproto.Window(reply.Output)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		isPrimary := false
		if len(crtcInfo.Outputs) > 0 {
			if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
				outputName = string(outputInfo.Name)
			}
			isPrimary = xproto.Window(crtcInfo.Outputs[0]) == primary
		}

		m := Monitor{
			ID:      i,
			Name:    outputName,
			X:       int(crtcInfo.X),
			Y:       int(crtcInfo.Y),
			Width:   int(crtcInfo.Width),
			Height:  int(crtcInfo.Height),
			Primary: isPrimary,
		}
		m.WorkX, m.WorkY, m.WorkW, m.WorkH = c.workArea(m)
		monitors = append(monitors, m)
	}

	if len(monitors) > 0 {
		hasPrimary := false
		for _, m := range monitors {
			if m.Primary {
				hasPrimary = true
				break
			}
		}
		if !hasPrimary {
			monitors[0].Primary = true
		}
	}

	return monitors, nil
}

// workArea intersects the monitor with the EWMH work area of the current
// desktop, excluding panels and docks. Falls back to the full monitor.
func (c *Connection) workArea(m Monitor) (x, y, w, h int) {
	x, y, w, h = m.X, m.Y, m.Width, m.Height

	workAreas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workAreas) == 0 {
		return
	}

	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workAreas) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workAreas[desktopIndex]

	x1 := maxInt(m.X, int(wa.X))
	y1 := maxInt(m.Y, int(wa.Y))
	x2 := minInt(m.X+m.Width, int(wa.X)+int(wa.Width))
	y2 := minInt(m.Y+m.Height, int(wa.Y)+int(wa.Height))

	if x2 > x1 && y2 > y1 {
		return x1, y1, x2 - x1, y2 - y1
	}
	return
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
