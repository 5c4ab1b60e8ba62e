package platform

import "testing"

func TestRectContains(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 800, Height: 600}

	if !r.Contains(100, 100) {
		t.Fatalf("origin must be contained")
	}
	if !r.Contains(500, 400) {
		t.Fatalf("interior point must be contained")
	}
	// Max edges are exclusive.
	if r.Contains(900, 400) || r.Contains(500, 700) {
		t.Fatalf("max edges must be exclusive")
	}
	if r.Contains(99, 100) {
		t.Fatalf("point left of rect must not be contained")
	}
}

func TestRectCenter(t *testing.T) {
	r := Rect{X: 100, Y: 200, Width: 800, Height: 600}
	if r.CenterX() != 500 || r.CenterY() != 500 {
		t.Fatalf("unexpected center (%d,%d)", r.CenterX(), r.CenterY())
	}
}

func TestEventKindString(t *testing.T) {
	kinds := map[EventKind]string{
		EventWindowOpened:    "opened",
		EventWindowClosed:    "closed",
		EventWindowFocused:   "focused",
		EventWindowMoved:     "moved",
		EventWindowResized:   "resized",
		EventMonitorsChanged: "monitors-changed",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Fatalf("kind %d: expected %q, got %q", k, want, got)
		}
	}
}
