// Package layout implements the accordion geometry engine: a pure function
// from one container's ordered windows and focus to target window frames.
package layout

import (
	"github.com/accordwm/accordwm/internal/platform"
	"github.com/accordwm/accordwm/internal/tiling"
)

// Input is everything the engine needs to lay out one container. Windows are
// in ring order. RingFocus is the container's own focus pointer; ActualFocus
// is the window system's input focus, which may differ.
type Input struct {
	Windows     []platform.WindowInfo
	RingFocus   platform.WindowID
	ActualFocus platform.WindowID
	Container   platform.Rect
	Offset      int
	Orientation tiling.Orientation
}

// Result holds the placements for one container. Floating windows and
// oversized non-resizable windows receive no placement.
type Result struct {
	Placements []platform.Placement
}

// slot is a window's position in the accordion relative to the effective
// focus.
type slot int

const (
	slotFocus slot = iota
	slotPrevious
	slotNext
	slotOther
)

// Calculate computes target frames for one container. It never emits a frame
// outside the container rectangle for resizable windows; non-resizable
// windows keep their natural size and are omitted entirely when they exceed
// the container in either dimension.
func Calculate(in Input) Result {
	ring := make([]platform.WindowInfo, 0, len(in.Windows))
	for _, w := range in.Windows {
		if w.IsFloating {
			continue
		}
		ring = append(ring, w)
	}
	if len(ring) == 0 {
		return Result{}
	}

	tileable := 0
	for _, w := range ring {
		if w.IsResizable {
			tileable++
		}
	}

	focusIdx := effectiveFocusIndex(ring, in.RingFocus)

	// A non-resizable window holding actual input focus freezes the
	// accordion: geometry stays at the ring focus, and the non-resizable
	// window is drawn centered on top.
	var frozenOverlay platform.WindowID
	if in.ActualFocus != 0 && in.ActualFocus != in.RingFocus {
		for _, w := range ring {
			if w.ID == in.ActualFocus && !w.IsResizable {
				frozenOverlay = w.ID
				break
			}
		}
	}

	out := Result{}
	slots := assignSlots(ring, focusIdx)

	for i, w := range ring {
		if !w.IsResizable {
			p, ok := placeNonResizable(w, slots[i], tileable, in, w.ID == in.ActualFocus || w.ID == frozenOverlay)
			if ok {
				out.Placements = append(out.Placements, p)
			}
			continue
		}
		out.Placements = append(out.Placements, platform.Placement{
			WindowID: w.ID,
			OwnerPID: w.OwnerPID,
			Frame:    accordionFrame(slots[i], tileable, in),
		})
	}
	return out
}

// effectiveFocusIndex resolves the ring focus to a ring index. An absent or
// floating focus id defaults to the first window; a non-resizable focus
// defaults to the first tileable window when one exists.
func effectiveFocusIndex(ring []platform.WindowInfo, focus platform.WindowID) int {
	idx := -1
	for i, w := range ring {
		if w.ID == focus {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = 0
	}
	if !ring[idx].IsResizable {
		for i, w := range ring {
			if w.IsResizable {
				return i
			}
		}
	}
	return idx
}

// assignSlots classifies every ring member relative to the focus index.
func assignSlots(ring []platform.WindowInfo, focusIdx int) []slot {
	n := len(ring)
	slots := make([]slot, n)
	for i := range ring {
		switch {
		case i == focusIdx:
			slots[i] = slotFocus
		case n >= 2 && i == (focusIdx-1+n)%n:
			slots[i] = slotPrevious
		case n >= 3 && i == (focusIdx+1)%n:
			slots[i] = slotNext
		default:
			slots[i] = slotOther
		}
	}
	return slots
}

// accordionFrame computes a tileable window's frame from its slot. With one
// window the container is filled; with two, both are one offset narrower and
// the non-focused window peeks by one offset; with three or more, both
// neighbors peek and everything else hides behind the focus.
func accordionFrame(s slot, tileable int, in Input) platform.Rect {
	c := in.Container
	o := in.Offset
	if in.Orientation == tiling.OrientationVertical {
		c = transpose(c)
	}

	var r platform.Rect
	switch {
	case tileable <= 1:
		r = c
	case tileable == 2:
		r = platform.Rect{X: c.X, Y: c.Y, Width: c.Width - o, Height: c.Height}
		if s != slotFocus {
			r.X = c.X + o
		}
	default:
		r = platform.Rect{X: c.X + o, Y: c.Y, Width: c.Width - 2*o, Height: c.Height}
		switch s {
		case slotPrevious:
			r.X = c.X
		case slotNext:
			r.X = c.X + 2*o
		}
	}

	if in.Orientation == tiling.OrientationVertical {
		r = transpose(r)
	}
	return r
}

// placeNonResizable positions a fixed-size window at its ring slot. Centered
// in the full container when it is alone or actually focused; otherwise
// anchored at its slot origin and centered on the cross axis. Windows larger
// than the container in either dimension are skipped so they retain their
// prior position.
func placeNonResizable(w platform.WindowInfo, s slot, tileable int, in Input, overlay bool) (platform.Placement, bool) {
	c := in.Container
	nw, nh := w.Frame.Width, w.Frame.Height
	if nw > c.Width || nh > c.Height {
		return platform.Placement{}, false
	}

	var frame platform.Rect
	if overlay || tileable == 0 {
		frame = platform.Rect{
			X:      c.X + (c.Width-nw)/2,
			Y:      c.Y + (c.Height-nh)/2,
			Width:  nw,
			Height: nh,
		}
		return platform.Placement{WindowID: w.ID, OwnerPID: w.OwnerPID, Frame: frame}, true
	}

	slotFrame := accordionFrame(s, tileable, in)
	if in.Orientation == tiling.OrientationVertical {
		frame = platform.Rect{
			X:      c.X + (c.Width-nw)/2,
			Y:      slotFrame.Y,
			Width:  nw,
			Height: nh,
		}
	} else {
		frame = platform.Rect{
			X:      slotFrame.X,
			Y:      c.Y + (c.Height-nh)/2,
			Width:  nw,
			Height: nh,
		}
	}

	// Clamp the slot anchor so a fixed-size window never lands off-screen.
	if frame.MaxX() > c.MaxX() {
		frame.X = c.MaxX() - nw
	}
	if frame.MaxY() > c.MaxY() {
		frame.Y = c.MaxY() - nh
	}
	return platform.Placement{WindowID: w.ID, OwnerPID: w.OwnerPID, Frame: frame}, true
}

func transpose(r platform.Rect) platform.Rect {
	return platform.Rect{X: r.Y, Y: r.X, Width: r.Height, Height: r.Width}
}
