package tiling

import (
	"testing"

	"github.com/accordwm/accordwm/internal/platform"
)

func TestContainerFrames_HalvesWithMarginAndPadding(t *testing.T) {
	work := platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	frames := ContainerFrames(LayoutHalves, work, 10, 8)

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	// inner = (10,10,1900,1060), usable = 1900-8 = 1892, half = 946.
	if frames[0] != (platform.Rect{X: 10, Y: 10, Width: 946, Height: 1060}) {
		t.Fatalf("unexpected left frame %+v", frames[0])
	}
	// x1 = 10 + 946 + 8 = 964, width = 1892 - 946 = 946.
	if frames[1] != (platform.Rect{X: 964, Y: 10, Width: 946, Height: 1060}) {
		t.Fatalf("unexpected right frame %+v", frames[1])
	}
}

func TestContainerFrames_FifthsCenterRatio(t *testing.T) {
	work := platform.Rect{X: 0, Y: 0, Width: 1000, Height: 500}
	frames := ContainerFrames(LayoutFifthsCenter, work, 0, 0)

	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	// 1/5, 3/5, 1/5 of 1000.
	if frames[0].Width != 200 || frames[1].Width != 600 || frames[2].Width != 200 {
		t.Fatalf("unexpected widths %d/%d/%d", frames[0].Width, frames[1].Width, frames[2].Width)
	}
}

func TestContainerFrames_TileInsetAreaExactly(t *testing.T) {
	// A width not divisible by the denominators forces rounding remainders.
	work := platform.Rect{X: 37, Y: 5, Width: 1367, Height: 763}
	margin, padding := 12, 7

	for l := LayoutMonocle; l <= LayoutFiveColumns; l++ {
		frames := ContainerFrames(l, work, margin, padding)
		if len(frames) != l.ContainerCount() {
			t.Fatalf("%s: expected %d frames, got %d", l, l.ContainerCount(), len(frames))
		}

		innerX := work.X + margin
		innerWidth := work.Width - 2*margin
		total := 0
		x := innerX
		for i, f := range frames {
			if f.X != x {
				t.Fatalf("%s: frame %d starts at %d, expected %d", l, i, f.X, x)
			}
			if f.Y != work.Y+margin || f.Height != work.Height-2*margin {
				t.Fatalf("%s: frame %d has wrong vertical extent %+v", l, i, f)
			}
			total += f.Width
			x += f.Width + padding
		}
		if total+(len(frames)-1)*padding != innerWidth {
			t.Fatalf("%s: frames cover %d of %d inner width", l, total+(len(frames)-1)*padding, innerWidth)
		}
	}
}

func TestContainerCount(t *testing.T) {
	counts := map[LayoutID]int{
		LayoutMonocle:         1,
		LayoutHalves:          2,
		LayoutThirds:          3,
		LayoutTwoThirdsLeft:   2,
		LayoutOneThirdLeft:    2,
		LayoutFifthsCenter:    3,
		LayoutThreeFifthsLeft: 2,
		LayoutTwoFifthsLeft:   2,
		LayoutFiveColumns:     5,
	}
	for l, want := range counts {
		if got := l.ContainerCount(); got != want {
			t.Fatalf("%s: expected %d containers, got %d", l, want, got)
		}
	}
}

func TestLayoutValid(t *testing.T) {
	if LayoutDynamic.Valid() {
		t.Fatalf("dynamic must not be a valid preset")
	}
	if !LayoutMonocle.Valid() || !LayoutFiveColumns.Valid() {
		t.Fatalf("preset bounds must be valid")
	}
	if LayoutID(10).Valid() {
		t.Fatalf("out-of-range id must be invalid")
	}
}
