package orchestrator

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/accordwm/accordwm/internal/platform"
	"github.com/accordwm/accordwm/internal/tiling"
)

// fakeBackend implements all four platform interfaces over in-memory state.
type fakeBackend struct {
	mu           sync.Mutex
	windows      []platform.WindowInfo
	monitors     []platform.MonitorInfo
	focused      platform.WindowID
	events       chan platform.Event
	blockBatches bool

	batches [][]platform.Placement
	raises  [][]platform.WindowID
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{events: make(chan platform.Event, 32)}
}

func (f *fakeBackend) VisibleWindows() ([]platform.WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]platform.WindowInfo, len(f.windows))
	copy(out, f.windows)
	return out, nil
}

func (f *fakeBackend) FocusedWindow() (*platform.WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.windows {
		if w.ID == f.focused {
			info := w
			return &info, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) ConnectedMonitors() ([]platform.MonitorInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]platform.MonitorInfo, len(f.monitors))
	copy(out, f.monitors)
	return out, nil
}

func (f *fakeBackend) Subscribe() (<-chan platform.Event, error) {
	return f.events, nil
}

func (f *fakeBackend) ApplyBatch(ctx context.Context, placements []platform.Placement, _ time.Duration) error {
	f.mu.Lock()
	block := f.blockBatches
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := make([]platform.Placement, len(placements))
	copy(batch, placements)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeBackend) Raise(ids []platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := make([]platform.WindowID, len(ids))
	copy(batch, ids)
	f.raises = append(f.raises, batch)
	return nil
}

func (f *fakeBackend) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func (f *fakeBackend) raiseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.raises)
}

func (f *fakeBackend) lastRaise() []platform.WindowID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.raises) == 0 {
		return nil
	}
	return f.raises[len(f.raises)-1]
}

func (f *fakeBackend) setWindows(windows ...platform.WindowInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = windows
}

// fakeStore records persistence calls for assertions.
type fakeStore struct {
	mu      sync.Mutex
	layouts map[platform.MonitorID]tiling.LayoutID
	deleted []platform.MonitorID
}

func newFakeStore() *fakeStore {
	return &fakeStore{layouts: make(map[platform.MonitorID]tiling.LayoutID)}
}

func (s *fakeStore) LoadMonitor(id platform.MonitorID) (tiling.LayoutID, map[tiling.LayoutID]map[platform.WindowID]int, map[int]tiling.Orientation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layouts[id]
	return l, nil, nil, ok
}

func (s *fakeStore) SaveMonitor(id platform.MonitorID, layout tiling.LayoutID, _ map[tiling.LayoutID]map[platform.WindowID]int, _ map[int]tiling.Orientation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[id] = layout
	return nil
}

func (s *fakeStore) DeleteMonitor(id platform.MonitorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.layouts, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeStore) deletedIDs() []platform.MonitorID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]platform.MonitorID, len(s.deleted))
	copy(out, s.deleted)
	return out
}

func testWindow(id platform.WindowID, x int) platform.WindowInfo {
	return platform.WindowInfo{
		ID:          id,
		Frame:       platform.Rect{X: x, Y: 0, Width: 800, Height: 600},
		IsResizable: true,
	}
}

func testMonitor() platform.MonitorInfo {
	return platform.MonitorInfo{
		ID:           1,
		Name:         "test",
		Frame:        platform.Rect{Width: 1920, Height: 1080},
		VisibleFrame: platform.Rect{Width: 1920, Height: 1080},
		IsMain:       true,
	}
}

func testMonitorAt(id platform.MonitorID, x int, main bool) platform.MonitorInfo {
	return platform.MonitorInfo{
		ID:           id,
		Name:         "test",
		Frame:        platform.Rect{X: x, Width: 1920, Height: 1080},
		VisibleFrame: platform.Rect{X: x, Width: 1920, Height: 1080},
		IsMain:       main,
	}
}

func testConfig() Config {
	return Config{
		AccordionOffset: 50,
		DebounceDelay:   20 * time.Millisecond,
		ZOrderGuard:     250 * time.Millisecond,
		DefaultLayout:   tiling.LayoutMonocle,
	}
}

func newTestOrchestrator(f *fakeBackend) *Orchestrator {
	return New(f, f, f, f, nil, testConfig(), log.New(io.Discard))
}

func TestStartPerformsInitialTile(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0), testWindow(2, 100))
	f.focused = 1

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	require.Equal(t, 1, f.batchCount())
	require.Len(t, f.batches[0], 2)
	require.Equal(t, Result{Kind: ResultSuccess, Tiled: 2}, o.LastResult())

	states := o.MonitorStates()
	require.Len(t, states, 1)
	require.Equal(t, tiling.LayoutMonocle, states[0].Layout)
	require.Equal(t, 2, states[0].Windows)
}

func TestDebounceCoalescesBurst(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0))
	f.focused = 1

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	// A burst of membership events must collapse into one debounced pass.
	for i := 0; i < 5; i++ {
		f.events <- platform.Event{Kind: platform.EventWindowOpened, Window: 1}
	}

	require.Eventually(t, func() bool { return f.batchCount() == 2 },
		time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 2, f.batchCount())
}

func TestMovedAndResizedEventsIgnored(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0))
	f.focused = 1

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	f.events <- platform.Event{Kind: platform.EventWindowMoved, Window: 1}
	f.events <- platform.Event{Kind: platform.EventWindowResized, Window: 1}

	time.Sleep(120 * time.Millisecond)
	require.Equal(t, 1, f.batchCount(), "user geometry events must never retile")
}

func TestDuplicateFocusEventSuppressed(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0), testWindow(2, 100))
	f.focused = 1

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	// The initial pass snapshotted focus=1, so a repeat is dropped.
	f.events <- platform.Event{Kind: platform.EventWindowFocused, Window: 1}
	time.Sleep(120 * time.Millisecond)
	require.Equal(t, 1, f.batchCount())

	f.events <- platform.Event{Kind: platform.EventWindowFocused, Window: 2}
	require.Eventually(t, func() bool { return f.batchCount() == 2 },
		time.Second, 5*time.Millisecond)
}

func TestNoWindowsToTile(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	require.Equal(t, 0, f.batchCount())
	require.Equal(t, ResultNoWindowsToTile, o.LastResult().Kind)
	require.Equal(t, "no-windows-to-tile", o.LastResult().String())
}

func TestNoConnectedMonitorsFails(t *testing.T) {
	f := newFakeBackend()
	f.setWindows(testWindow(1, 0))

	o := newTestOrchestrator(f)
	res := o.RetileNow(context.Background())

	require.Equal(t, ResultFailed, res.Kind)
	require.Equal(t, "no connected monitors", res.Reason)
}

func TestFloatingWindowsDoNotCount(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	floating := testWindow(1, 0)
	floating.IsFloating = true
	f.setWindows(floating)

	o := newTestOrchestrator(f)
	res := o.RetileNow(context.Background())

	require.Equal(t, ResultNoWindowsToTile, res.Kind)
}

func TestRaiseBatchEndsWithActualFocus(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0), testWindow(2, 100), testWindow(3, 200))
	f.focused = 2

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	require.Equal(t, 1, f.raiseCount())
	batch := f.lastRaise()
	require.Len(t, batch, 3)
	require.Equal(t, platform.WindowID(2), batch[len(batch)-1], "focused window must be raised last")
}

func TestUnchangedContainersNotReRaised(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0), testWindow(2, 100))
	f.focused = 1

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()
	require.Equal(t, 1, f.raiseCount())

	// Same membership and focus: signatures match, nothing to re-raise.
	o.RetileNow(context.Background())
	require.Equal(t, 2, f.batchCount())
	require.Equal(t, 1, f.raiseCount())
}

func TestSwitchLayoutRedistributes(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0), testWindow(2, 100), testWindow(3, 200))
	f.focused = 1

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	o.SwitchLayout(context.Background(), tiling.LayoutHalves, nil)

	require.Eventually(t, func() bool { return f.batchCount() == 2 },
		time.Second, 5*time.Millisecond)

	states := o.MonitorStates()
	require.Len(t, states, 1)
	require.Equal(t, tiling.LayoutHalves, states[0].Layout)
	require.Equal(t, 2, states[0].Containers)
	require.Equal(t, 3, states[0].Windows)
}

func TestSwitchLayoutInvalidIsNoOp(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0))

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	o.SwitchLayout(context.Background(), tiling.LayoutDynamic, nil)
	o.SwitchLayout(context.Background(), tiling.LayoutID(99), nil)

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, f.batchCount())
}

func TestClosedWindowReconciled(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0), testWindow(2, 100))
	f.focused = 1

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	f.setWindows(testWindow(1, 0))
	f.events <- platform.Event{Kind: platform.EventWindowClosed, Window: 2}

	require.Eventually(t, func() bool {
		states := o.MonitorStates()
		return len(states) == 1 && states[0].Windows == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCycleWindowChangesRingFocus(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0), testWindow(2, 100))
	f.focused = 1

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	o.CycleWindow(context.Background(), tiling.DirRight)

	require.Eventually(t, func() bool { return f.batchCount() == 2 },
		time.Second, 5*time.Millisecond)

	// The second pass placed window 2 in the focus slot: full width minus one
	// offset, anchored at the container origin.
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.batches[1] {
		if p.WindowID == 2 {
			require.Equal(t, 0, p.Frame.X)
			require.Equal(t, 1870, p.Frame.Width)
			return
		}
	}
	t.Fatalf("window 2 missing from second batch")
}

func TestStopCancelsPendingRetile(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0))
	f.focused = 1

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))

	f.events <- platform.Event{Kind: platform.EventWindowOpened, Window: 1}
	o.Stop()

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, f.batchCount(), "pending debounce must not fire after Stop")
}

func TestStopCancelsInFlightBatch(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0))
	f.focused = 1

	o := newTestOrchestrator(f)
	require.NoError(t, o.Start(context.Background()))
	require.Equal(t, 1, f.batchCount())

	f.mu.Lock()
	f.blockBatches = true
	f.mu.Unlock()
	f.events <- platform.Event{Kind: platform.EventWindowOpened, Window: 1}

	// Let the debounced pass enter the blocked batch; Stop must unblock it
	// through cancellation rather than hang behind it.
	time.Sleep(60 * time.Millisecond)
	o.Stop()

	require.Eventually(t, func() bool {
		res := o.LastResult()
		return res.Kind == ResultFailed && res.Reason == "cancelled"
	}, time.Second, 5*time.Millisecond)
}

func TestConcurrentConfigReloadAndSwitchLayout(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0), testWindow(2, 100))
	f.focused = 1

	o := newTestOrchestrator(f)
	o.RetileNow(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			cfg := testConfig()
			cfg.Margin = i % 8
			o.UpdateConfig(cfg)
		}
	}()
	go func() {
		defer wg.Done()
		layouts := []tiling.LayoutID{tiling.LayoutHalves, tiling.LayoutThirds}
		for i := 0; i < 100; i++ {
			o.SwitchLayout(context.Background(), layouts[i%2], nil)
		}
	}()
	wg.Wait()

	states := o.MonitorStates()
	require.Len(t, states, 1)
	require.True(t, states[0].Layout.Valid())
}

func TestWindowCrossingMonitorsLeavesOldContainer(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitorAt(1, 0, true), testMonitorAt(2, 1920, false)}
	f.setWindows(testWindow(1, 100))
	f.focused = 1

	o := newTestOrchestrator(f)
	o.RetileNow(context.Background())

	states := o.MonitorStates()
	require.Len(t, states, 2)
	require.Equal(t, 1, states[0].Windows)
	require.Equal(t, 0, states[1].Windows)

	// The window drifts onto the second monitor: exactly one monitor may own
	// it afterwards.
	f.setWindows(testWindow(1, 2000))
	o.RetileNow(context.Background())

	states = o.MonitorStates()
	require.Len(t, states, 2)
	require.Equal(t, 0, states[0].Windows)
	require.Equal(t, 1, states[1].Windows)
}

func TestManualResizeSwitchesMonitorToDynamic(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0))
	f.focused = 1

	cfg := testConfig()
	cfg.ZOrderGuard = 20 * time.Millisecond
	o := New(f, f, f, f, nil, cfg, log.New(io.Discard))
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()
	require.Equal(t, 1, f.batchCount())

	// Outside the settle window a divergent frame reads as a user action.
	time.Sleep(60 * time.Millisecond)
	manual := platform.Rect{X: 100, Y: 100, Width: 640, Height: 480}
	f.events <- platform.Event{Kind: platform.EventWindowResized, Window: 1, Frame: manual}

	require.Eventually(t, func() bool {
		states := o.MonitorStates()
		return len(states) == 1 && states[0].Layout == tiling.LayoutDynamic
	}, time.Second, 5*time.Millisecond)

	// The follow-up pass keeps the manual geometry: the container adopted the
	// resized frame and its single window fills it.
	require.Eventually(t, func() bool { return f.batchCount() == 2 },
		time.Second, 5*time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, manual, f.batches[1][0].Frame)
}

func TestPlacementEchoDoesNotMarkDynamic(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0))
	f.focused = 1

	cfg := testConfig()
	cfg.ZOrderGuard = 20 * time.Millisecond
	o := New(f, f, f, f, nil, cfg, log.New(io.Discard))
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	time.Sleep(60 * time.Millisecond)
	f.mu.Lock()
	echo := f.batches[0][0].Frame
	f.mu.Unlock()
	f.events <- platform.Event{Kind: platform.EventWindowMoved, Window: 1, Frame: echo}

	time.Sleep(100 * time.Millisecond)
	states := o.MonitorStates()
	require.Equal(t, tiling.LayoutMonocle, states[0].Layout)
	require.Equal(t, 1, f.batchCount())
}

func TestDynamicLayoutRestoredFromStore(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitor()}
	f.setWindows(testWindow(1, 0))
	f.focused = 1

	st := newFakeStore()
	st.layouts[1] = tiling.LayoutDynamic

	o := New(f, f, f, f, st, testConfig(), log.New(io.Discard))
	o.RetileNow(context.Background())

	states := o.MonitorStates()
	require.Len(t, states, 1)
	require.Equal(t, tiling.LayoutDynamic, states[0].Layout)

	// A restored dynamic container has no manual frame yet and fills the work
	// area.
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, platform.Rect{Width: 1920, Height: 1080}, f.batches[0][0].Frame)
}

func TestDisconnectedMonitorStateRetired(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitorAt(1, 0, true), testMonitorAt(2, 1920, false)}
	f.setWindows(testWindow(1, 100), testWindow(2, 2000))
	f.focused = 1

	st := newFakeStore()
	o := New(f, f, f, f, st, testConfig(), log.New(io.Discard))
	o.RetileNow(context.Background())
	require.Len(t, o.MonitorStates(), 2)

	f.mu.Lock()
	f.monitors = f.monitors[:1]
	f.mu.Unlock()
	f.setWindows(testWindow(1, 100))
	o.RetileNow(context.Background())

	states := o.MonitorStates()
	require.Len(t, states, 1)
	require.EqualValues(t, 1, states[0].MonitorID)
	// Monitor 2 had an arrangement worth restoring, so its record survives
	// for a reconnect.
	require.Empty(t, st.deletedIDs())
}

func TestDisconnectedEmptyMonitorRecordDeleted(t *testing.T) {
	f := newFakeBackend()
	f.monitors = []platform.MonitorInfo{testMonitorAt(1, 0, true), testMonitorAt(2, 1920, false)}
	f.setWindows(testWindow(1, 100))
	f.focused = 1

	st := newFakeStore()
	o := New(f, f, f, f, st, testConfig(), log.New(io.Discard))
	o.RetileNow(context.Background())
	require.Len(t, o.MonitorStates(), 2)

	f.mu.Lock()
	f.monitors = f.monitors[:1]
	f.mu.Unlock()
	o.RetileNow(context.Background())

	require.Len(t, o.MonitorStates(), 1)
	require.Equal(t, []platform.MonitorID{2}, st.deletedIDs())
}
