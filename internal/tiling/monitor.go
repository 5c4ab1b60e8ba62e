package tiling

import (
	"github.com/accordwm/accordwm/internal/platform"
)

// Direction selects an adjacent container or ring neighbor.
type Direction int

const (
	// DirLeft selects the previous container (or previous ring member).
	DirLeft Direction = iota
	// DirRight selects the next container (or next ring member).
	DirRight
)

// String returns the direction name.
func (d Direction) String() string {
	if d == DirLeft {
		return "left"
	}
	return "right"
}

// Orientation is the accordion stacking axis for one container.
type Orientation int

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
)

// String returns the orientation name.
func (o Orientation) String() string {
	if o == OrientationVertical {
		return "vertical"
	}
	return "horizontal"
}

// MonitorState is the per-monitor tiling aggregate: the active layout, the
// ordered containers (left to right), and the focused-container pointer. All
// mutation happens on the orchestrator's serialized context.
type MonitorState struct {
	MonitorID platform.MonitorID

	activeLayout     LayoutID
	containers       []*Container
	focusedContainer ContainerID // 0 when unset
	nextContainerID  ContainerID

	// memory remembers window→container-position assignments per layout so a
	// switch back restores windows to their previous slots.
	memory map[LayoutID]map[platform.WindowID]int

	// orientations holds the accordion axis per container position.
	orientations map[int]Orientation
}

// NewMonitorState creates an empty state for a monitor with the given layout.
func NewMonitorState(id platform.MonitorID, layout LayoutID) *MonitorState {
	return &MonitorState{
		MonitorID:       id,
		activeLayout:    layout,
		nextContainerID: 1,
		memory:          make(map[LayoutID]map[platform.WindowID]int),
		orientations:    make(map[int]Orientation),
	}
}

// ActiveLayout returns the monitor's active layout id.
func (m *MonitorState) ActiveLayout() LayoutID { return m.activeLayout }

// MarkDynamic switches the monitor to the dynamic layout marker, used once a
// container has been manually resized.
func (m *MonitorState) MarkDynamic() { m.activeLayout = LayoutDynamic }

// Containers returns the ordered container slice. Callers must not mutate it.
func (m *MonitorState) Containers() []*Container { return m.containers }

// FocusedContainer returns the focused container, or nil when unset.
func (m *MonitorState) FocusedContainer() *Container {
	if m.focusedContainer == 0 {
		return nil
	}
	return m.containerByID(m.focusedContainer)
}

// WindowCount returns the total number of windows across all containers.
func (m *MonitorState) WindowCount() int {
	n := 0
	for _, c := range m.containers {
		n += c.Len()
	}
	return n
}

// AssignWindow places a window into a container. With no containers one is
// created and the window becomes its sole, focused member. A non-nil target
// names the destination; otherwise the focused container is used, falling
// back to the first container.
func (m *MonitorState) AssignWindow(id platform.WindowID, target *ContainerID) {
	if len(m.containers) == 0 {
		c := m.newContainer(platform.Rect{})
		c.AddWindow(id)
		m.focusedContainer = c.ID
		return
	}

	var dst *Container
	if target != nil {
		dst = m.containerByID(*target)
	}
	if dst == nil {
		dst = m.FocusedContainer()
	}
	if dst == nil {
		dst = m.containers[0]
	}
	dst.AddWindow(id)
}

// RemoveWindow removes a window from whichever container owns it. Unknown
// windows are a no-op.
func (m *MonitorState) RemoveWindow(id platform.WindowID) {
	if c := m.ContainerForWindow(id); c != nil {
		c.RemoveWindow(id)
	}
}

// ContainerForWindow returns the container owning the window, or nil.
func (m *MonitorState) ContainerForWindow(id platform.WindowID) *Container {
	for _, c := range m.containers {
		if c.Contains(id) {
			return c
		}
	}
	return nil
}

// RedistributeWindows flattens all windows in container order (preserving
// each ring's internal order), discards the old containers, and deals the
// windows round-robin into fresh containers matching the given frames:
// window i goes to container i mod len(frames). Focus moves to the first new
// container.
func (m *MonitorState) RedistributeWindows(frames []platform.Rect) {
	if len(frames) == 0 {
		return
	}
	windows := m.collectWindows()
	m.replaceContainers(frames)
	for i, id := range windows {
		m.containers[i%len(m.containers)].AddWindow(id)
	}
	m.focusedContainer = m.containers[0].ID
}

// SwitchLayout reassigns all windows into the new layout's containers.
// Same-layout switches are no-ops. Reassignment resolution order:
// remembered per-layout slots, then nearest-center against windowFrames,
// then round-robin. The focused container becomes whichever container
// received the previously ring-focused window.
func (m *MonitorState) SwitchLayout(to LayoutID, containerFrames []platform.Rect, windowFrames map[platform.WindowID]platform.Rect) {
	if to == m.activeLayout || len(containerFrames) == 0 {
		return
	}

	// Remember the outgoing arrangement so switching back restores it.
	m.rememberAssignments()

	var prevFocus platform.WindowID
	if fc := m.FocusedContainer(); fc != nil {
		prevFocus, _ = fc.FocusedWindow()
	}
	windows := m.collectWindows()

	m.replaceContainers(containerFrames)
	m.activeLayout = to

	switch {
	case len(m.memory[to]) > 0:
		m.restoreFromMemory(to, windows)
	case len(windowFrames) > 0:
		m.assignByProximity(windows, windowFrames)
	default:
		for i, id := range windows {
			m.containers[i%len(m.containers)].AddWindow(id)
		}
	}

	m.focusedContainer = m.containers[0].ID
	if prevFocus != 0 {
		if c := m.ContainerForWindow(prevFocus); c != nil {
			m.focusedContainer = c.ID
		}
	}
}

// CycleWindow cycles focus within the container owning the window. Unknown
// windows are a no-op.
func (m *MonitorState) CycleWindow(dir Direction, id platform.WindowID) {
	c := m.ContainerForWindow(id)
	if c == nil {
		return
	}
	if dir == DirRight {
		c.CycleNext()
	} else {
		c.CyclePrevious()
	}
}

// MoveWindow detaches the named window from its container and appends it to
// the adjacent container in the given direction. The source container's focus
// follows its normal removal rule; the moved window is focused in the
// destination only when the destination was empty. No-op at either boundary
// or with a single container.
func (m *MonitorState) MoveWindow(id platform.WindowID, dir Direction) {
	src := m.ContainerForWindow(id)
	if src == nil || len(m.containers) < 2 {
		return
	}
	dst := m.adjacentContainer(src.ID, dir)
	if dst == nil {
		return
	}
	if !src.DetachWindow(id) {
		return
	}
	dst.AddWindow(id)
}

// SetFocusedContainer moves the focused-container pointer to the adjacent
// container. No-op at boundaries or with a single container.
func (m *MonitorState) SetFocusedContainer(dir Direction) {
	cur := m.FocusedContainer()
	if cur == nil {
		if len(m.containers) > 0 {
			m.focusedContainer = m.containers[0].ID
		}
		return
	}
	if next := m.adjacentContainer(cur.ID, dir); next != nil {
		m.focusedContainer = next.ID
	}
}

// UpdateFocusedContainer points the focused-container pointer at the
// container owning the window. Unknown windows are a no-op.
func (m *MonitorState) UpdateFocusedContainer(id platform.WindowID) {
	if c := m.ContainerForWindow(id); c != nil {
		m.focusedContainer = c.ID
	}
}

// ApplyContainerFrames assigns layout frames to containers by position.
// Extra frames are ignored; containers beyond the frame list keep their
// current frame.
func (m *MonitorState) ApplyContainerFrames(frames []platform.Rect) {
	for i, c := range m.containers {
		if i < len(frames) {
			c.Frame = frames[i]
		}
	}
}

// OrientationAt returns the accordion axis for the container position.
func (m *MonitorState) OrientationAt(pos int) Orientation {
	return m.orientations[pos]
}

// SetOrientationAt sets the accordion axis for the container position.
func (m *MonitorState) SetOrientationAt(pos int, o Orientation) {
	m.orientations[pos] = o
}

// Memory returns the per-layout slot memory for persistence. Callers must
// not mutate the returned maps.
func (m *MonitorState) Memory() map[LayoutID]map[platform.WindowID]int {
	m.rememberAssignments()
	return m.memory
}

// RestoreMemory replaces the per-layout slot memory, used when loading
// persisted state on startup.
func (m *MonitorState) RestoreMemory(memory map[LayoutID]map[platform.WindowID]int) {
	if memory == nil {
		memory = make(map[LayoutID]map[platform.WindowID]int)
	}
	m.memory = memory
}

func (m *MonitorState) rememberAssignments() {
	if m.activeLayout == LayoutDynamic && len(m.containers) == 0 {
		return
	}
	slots := make(map[platform.WindowID]int)
	for pos, c := range m.containers {
		for _, id := range c.Windows() {
			slots[id] = pos
		}
	}
	if len(slots) > 0 {
		m.memory[m.activeLayout] = slots
	}
}

// restoreFromMemory places remembered windows at their slots; windows with no
// memory entry and slots whose windows no longer exist fall through silently.
func (m *MonitorState) restoreFromMemory(layout LayoutID, windows []platform.WindowID) {
	slots := m.memory[layout]
	var unremembered []platform.WindowID
	for _, id := range windows {
		pos, ok := slots[id]
		if !ok || pos >= len(m.containers) {
			unremembered = append(unremembered, id)
			continue
		}
		m.containers[pos].AddWindow(id)
	}
	for _, id := range unremembered {
		m.containers[0].AddWindow(id)
	}
}

// assignByProximity assigns each window to the container whose frame center
// is nearest the window's own frame center, ties broken by the smaller
// container index. Windows with no known frame go to the first container.
func (m *MonitorState) assignByProximity(windows []platform.WindowID, frames map[platform.WindowID]platform.Rect) {
	for _, id := range windows {
		wf, ok := frames[id]
		if !ok {
			m.containers[0].AddWindow(id)
			continue
		}
		best := 0
		bestDist := int64(-1)
		for i, c := range m.containers {
			dx := int64(c.Frame.CenterX() - wf.CenterX())
			dy := int64(c.Frame.CenterY() - wf.CenterY())
			d := dx*dx + dy*dy
			if bestDist < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
		m.containers[best].AddWindow(id)
	}
}

func (m *MonitorState) collectWindows() []platform.WindowID {
	var out []platform.WindowID
	for _, c := range m.containers {
		out = append(out, c.Windows()...)
	}
	return out
}

func (m *MonitorState) replaceContainers(frames []platform.Rect) {
	m.containers = nil
	m.focusedContainer = 0
	for _, f := range frames {
		m.newContainer(f)
	}
}

func (m *MonitorState) newContainer(frame platform.Rect) *Container {
	c := NewContainer(m.nextContainerID, frame)
	m.nextContainerID++
	m.containers = append(m.containers, c)
	return c
}

func (m *MonitorState) containerByID(id ContainerID) *Container {
	for _, c := range m.containers {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *MonitorState) adjacentContainer(id ContainerID, dir Direction) *Container {
	idx := -1
	for i, c := range m.containers {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	next := idx + 1
	if dir == DirLeft {
		next = idx - 1
	}
	if next < 0 || next >= len(m.containers) {
		return nil
	}
	return m.containers[next]
}
