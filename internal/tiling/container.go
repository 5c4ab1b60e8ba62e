package tiling

import "github.com/accordwm/accordwm/internal/platform"

// ContainerID identifies a container within a monitor. IDs are monotonically
// increasing and never reused for the lifetime of a MonitorState.
type ContainerID int

// Container is an ordered ring of windows occupying one rectangular region of
// a monitor. Insertion order is ring order; at most one member is focused.
type Container struct {
	ID    ContainerID
	Frame platform.Rect

	windowIDs []platform.WindowID
	focused   platform.WindowID // 0 when empty
}

// NewContainer creates an empty container with the given id and frame.
func NewContainer(id ContainerID, frame platform.Rect) *Container {
	return &Container{ID: id, Frame: frame}
}

// Len returns the number of windows in the container.
func (c *Container) Len() int { return len(c.windowIDs) }

// Windows returns the ring in order. The returned slice is a copy.
func (c *Container) Windows() []platform.WindowID {
	out := make([]platform.WindowID, len(c.windowIDs))
	copy(out, c.windowIDs)
	return out
}

// FocusedWindow returns the focused member and true, or 0 and false when the
// container is empty.
func (c *Container) FocusedWindow() (platform.WindowID, bool) {
	if c.focused == 0 {
		return 0, false
	}
	return c.focused, true
}

// Contains reports whether the window is a member of the ring.
func (c *Container) Contains(id platform.WindowID) bool {
	return c.indexOf(id) >= 0
}

// AddWindow appends a window to the ring. If the container was empty the new
// window becomes focused. Adding a window that is already a member is a no-op.
func (c *Container) AddWindow(id platform.WindowID) {
	if id == 0 || c.Contains(id) {
		return
	}
	c.windowIDs = append(c.windowIDs, id)
	if c.focused == 0 {
		c.focused = id
	}
}

// RemoveWindow removes a window from the ring. If the removed window was
// focused, focus advances to its successor, wrapping to the first member.
// Removing an absent window is a no-op.
func (c *Container) RemoveWindow(id platform.WindowID) {
	i := c.indexOf(id)
	if i < 0 {
		return
	}
	wasFocused := c.focused == id
	c.windowIDs = append(c.windowIDs[:i], c.windowIDs[i+1:]...)

	if len(c.windowIDs) == 0 {
		c.focused = 0
		return
	}
	if wasFocused {
		// Successor now sits at the removed index; wrap past the end.
		c.focused = c.windowIDs[i%len(c.windowIDs)]
	}
}

// CycleNext advances focus to the next ring member, wrapping. No-op with
// fewer than two members.
func (c *Container) CycleNext() {
	c.cycle(1)
}

// CyclePrevious retreats focus to the previous ring member, wrapping. No-op
// with fewer than two members.
func (c *Container) CyclePrevious() {
	c.cycle(-1)
}

func (c *Container) cycle(delta int) {
	n := len(c.windowIDs)
	if n < 2 {
		return
	}
	i := c.indexOf(c.focused)
	if i < 0 {
		c.focused = c.windowIDs[0]
		return
	}
	c.focused = c.windowIDs[((i+delta)%n+n)%n]
}

// MoveFocusedWindow detaches and returns the focused member, advancing focus
// to its successor. Returns 0 and false when the container is empty.
func (c *Container) MoveFocusedWindow() (platform.WindowID, bool) {
	if c.focused == 0 {
		return 0, false
	}
	moved := c.focused
	c.RemoveWindow(moved)
	return moved, true
}

// FocusWindow sets focus to the named window if it is a member; otherwise a
// no-op.
func (c *Container) FocusWindow(id platform.WindowID) {
	if c.Contains(id) {
		c.focused = id
	}
}

// DetachWindow removes the named window and returns whether it was a member.
// Focus moves exactly as in RemoveWindow.
func (c *Container) DetachWindow(id platform.WindowID) bool {
	if !c.Contains(id) {
		return false
	}
	c.RemoveWindow(id)
	return true
}

func (c *Container) indexOf(id platform.WindowID) int {
	for i, wid := range c.windowIDs {
		if wid == id {
			return i
		}
	}
	return -1
}
