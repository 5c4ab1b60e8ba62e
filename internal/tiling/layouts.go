package tiling

import "github.com/accordwm/accordwm/internal/platform"

// LayoutID identifies a built-in column layout. LayoutDynamic marks a monitor
// whose containers have been manually resized and no longer follow a preset.
type LayoutID int

const (
	LayoutDynamic LayoutID = iota
	LayoutMonocle
	LayoutHalves
	LayoutThirds
	LayoutTwoThirdsLeft
	LayoutOneThirdLeft
	LayoutFifthsCenter
	LayoutThreeFifthsLeft
	LayoutTwoFifthsLeft
	LayoutFiveColumns
)

// String returns the layout name.
func (l LayoutID) String() string {
	switch l {
	case LayoutDynamic:
		return "dynamic"
	case LayoutMonocle:
		return "monocle"
	case LayoutHalves:
		return "halves"
	case LayoutThirds:
		return "thirds"
	case LayoutTwoThirdsLeft:
		return "two-thirds-left"
	case LayoutOneThirdLeft:
		return "one-third-left"
	case LayoutFifthsCenter:
		return "fifths-center"
	case LayoutThreeFifthsLeft:
		return "three-fifths-left"
	case LayoutTwoFifthsLeft:
		return "two-fifths-left"
	case LayoutFiveColumns:
		return "five-columns"
	default:
		return "unknown"
	}
}

// Valid reports whether the id names a built-in preset layout.
func (l LayoutID) Valid() bool {
	return l >= LayoutMonocle && l <= LayoutFiveColumns
}

// columnFractions returns each column's width as numerator over denominator,
// left to right.
func (l LayoutID) columnFractions() (nums []int, den int) {
	switch l {
	case LayoutMonocle:
		return []int{1}, 1
	case LayoutHalves:
		return []int{1, 1}, 2
	case LayoutThirds:
		return []int{1, 1, 1}, 3
	case LayoutTwoThirdsLeft:
		return []int{2, 1}, 3
	case LayoutOneThirdLeft:
		return []int{1, 2}, 3
	case LayoutFifthsCenter:
		return []int{1, 3, 1}, 5
	case LayoutThreeFifthsLeft:
		return []int{3, 2}, 5
	case LayoutTwoFifthsLeft:
		return []int{2, 3}, 5
	case LayoutFiveColumns:
		return []int{1, 1, 1, 1, 1}, 5
	default:
		return nil, 1
	}
}

// ContainerCount returns the number of containers the layout produces.
func (l LayoutID) ContainerCount() int {
	nums, _ := l.columnFractions()
	return len(nums)
}

// ContainerFrames computes the container rectangles for a layout on the given
// work area. Margin insets the work area on all sides; padding separates
// adjacent columns. Rounding remainders go to the rightmost column so the
// frames always tile the inset area exactly.
func ContainerFrames(l LayoutID, work platform.Rect, margin, padding int) []platform.Rect {
	nums, den := l.columnFractions()
	if len(nums) == 0 {
		return nil
	}

	inner := platform.Rect{
		X:      work.X + margin,
		Y:      work.Y + margin,
		Width:  work.Width - 2*margin,
		Height: work.Height - 2*margin,
	}
	if inner.Width < 1 {
		inner.Width = 1
	}
	if inner.Height < 1 {
		inner.Height = 1
	}

	cols := len(nums)
	usable := inner.Width - (cols-1)*padding
	if usable < cols {
		usable = cols
	}

	frames := make([]platform.Rect, cols)
	x := inner.X
	assigned := 0
	for i, num := range nums {
		w := usable * num / den
		if i == cols-1 {
			w = usable - assigned
		}
		frames[i] = platform.Rect{X: x, Y: inner.Y, Width: w, Height: inner.Height}
		x += w + padding
		assigned += w
	}
	return frames
}
