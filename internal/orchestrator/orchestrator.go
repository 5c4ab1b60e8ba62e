// Package orchestrator drives automatic retiling: it consumes window and
// monitor change notifications, maintains per-monitor tiling state, and turns
// layout engine output into animated placement batches.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/accordwm/accordwm/internal/layout"
	"github.com/accordwm/accordwm/internal/platform"
	"github.com/accordwm/accordwm/internal/tiling"
)

// Config holds the numeric parameters the orchestrator consumes. It is plain
// immutable data; parsing and validation live in the config package.
type Config struct {
	Margin            int
	Padding           int
	AccordionOffset   int
	AnimationDuration time.Duration
	DebounceDelay     time.Duration
	ZOrderGuard       time.Duration
	AnimateFirstTile  bool
	DefaultLayout     tiling.LayoutID
}

// ResultKind classifies the outcome of a retile pass.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultNoWindowsToTile
	ResultFailed
)

// Result reports a retile outcome for observability; it is never an error.
type Result struct {
	Kind   ResultKind
	Tiled  int
	Reason string
}

// String renders the result for logs and status output.
func (r Result) String() string {
	switch r.Kind {
	case ResultSuccess:
		return fmt.Sprintf("success(%d)", r.Tiled)
	case ResultNoWindowsToTile:
		return "no-windows-to-tile"
	default:
		return fmt.Sprintf("failed(%s)", r.Reason)
	}
}

// Store persists per-monitor layout memory and accordion orientation across
// daemon restarts and monitor reconnects.
type Store interface {
	LoadMonitor(id platform.MonitorID) (tiling.LayoutID, map[tiling.LayoutID]map[platform.WindowID]int, map[int]tiling.Orientation, bool)
	SaveMonitor(id platform.MonitorID, layout tiling.LayoutID, memory map[tiling.LayoutID]map[platform.WindowID]int, orientations map[int]tiling.Orientation) error
	DeleteMonitor(id platform.MonitorID) error
}

// Orchestrator is the auto-tiling event loop. All state mutation is
// serialized under mu; event ingestion marshals window-system callbacks onto
// that context. At most one debounced retile is pending at a time, and
// placement batches never execute concurrently.
type Orchestrator struct {
	windows    platform.WindowSource
	monitors   platform.MonitorSource
	events     platform.EventSource
	positioner platform.Positioner
	store      Store
	cfg        Config
	logger     *log.Logger

	mu              sync.Mutex
	running         bool
	states          map[platform.MonitorID]*tiling.MonitorState
	lastFocused     platform.WindowID
	prevActualFocus platform.WindowID
	firstTileDone   bool
	lastResult      Result

	// lastPlaced holds the frames of the most recent placement batch, used to
	// tell the tiler's own geometry echoes apart from manual moves.
	lastPlaced map[platform.WindowID]platform.Rect

	// Trailing-edge debounce: a new schedule cancels and replaces the pending
	// timer; the generation counter discards late fires from a superseded
	// timer.
	retileTimer *time.Timer
	retileGen   uint64

	// tileMu serializes performTile passes so no two placement batches are
	// ever in flight together.
	tileMu sync.Mutex

	// Z-order bookkeeping: container membership+focus signatures from the
	// last pass decide which containers are re-raised.
	lastRetileAt   time.Time
	lastSignatures map[tiling.ContainerID]string

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an orchestrator over the given collaborators. The store may be
// nil, in which case nothing is persisted.
func New(windows platform.WindowSource, monitors platform.MonitorSource, events platform.EventSource, positioner platform.Positioner, store Store, cfg Config, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.DefaultLayout == tiling.LayoutDynamic {
		cfg.DefaultLayout = tiling.LayoutMonocle
	}
	return &Orchestrator{
		windows:        windows,
		monitors:       monitors,
		events:         events,
		positioner:     positioner,
		store:          store,
		cfg:            cfg,
		logger:         logger,
		states:         make(map[platform.MonitorID]*tiling.MonitorState),
		lastPlaced:     make(map[platform.WindowID]platform.Rect),
		lastSignatures: make(map[tiling.ContainerID]string),
	}
}

// Start snapshots monitors and windows, performs the initial tile (instant
// unless AnimateFirstTile is set), and begins consuming change events.
// Calling Start on a running orchestrator is a no-op.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil
	}
	o.running = true
	o.mu.Unlock()

	ch, err := o.events.Subscribe()
	if err != nil {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
		return fmt.Errorf("failed to subscribe to window events: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.done = make(chan struct{})
	o.mu.Unlock()

	res := o.performTile(runCtx)
	o.logger.Info("initial tile", "result", res.String())

	go o.eventLoop(runCtx, ch)
	return nil
}

// Stop cancels the pending retile timer and the event loop. No further events
// are processed until Start is called again.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	o.retileGen++
	if o.retileTimer != nil {
		o.retileTimer.Stop()
		o.retileTimer = nil
	}
	cancel := o.cancel
	done := o.done
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	o.logger.Info("orchestrator stopped")
}

// UpdateConfig replaces the tiling parameters. It takes effect on the next
// retile pass; existing monitor states keep their active layouts.
func (o *Orchestrator) UpdateConfig(cfg Config) {
	if cfg.DefaultLayout == tiling.LayoutDynamic {
		cfg.DefaultLayout = tiling.LayoutMonocle
	}
	o.mu.Lock()
	o.cfg = cfg
	o.mu.Unlock()
}

// configSnapshot copies the config under mu so a pass works from one
// consistent parameter set even while a reload replaces it.
func (o *Orchestrator) configSnapshot() Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg
}

// LastResult returns the most recent retile outcome.
func (o *Orchestrator) LastResult() Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastResult
}

// MonitorStates returns a snapshot of (monitor, layout, container count,
// window count) tuples for status reporting.
func (o *Orchestrator) MonitorStates() []MonitorStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]MonitorStatus, 0, len(o.states))
	for id, st := range o.states {
		out = append(out, MonitorStatus{
			MonitorID:  id,
			Layout:     st.ActiveLayout(),
			Containers: len(st.Containers()),
			Windows:    st.WindowCount(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonitorID < out[j].MonitorID })
	return out
}

// MonitorStatus is one monitor's summary for status output.
type MonitorStatus struct {
	MonitorID  platform.MonitorID
	Layout     tiling.LayoutID
	Containers int
	Windows    int
}

func (o *Orchestrator) eventLoop(ctx context.Context, ch <-chan platform.Event) {
	defer close(o.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			o.handleEvent(ctx, ev)
		}
	}
}

// handleEvent classifies and filters one notification. Moved and resized
// events are user-initiated geometry changes the tiler must not fight; they
// never retile, but a manual change to a tracked window's frame flips its
// monitor into the dynamic layout.
func (o *Orchestrator) handleEvent(ctx context.Context, ev platform.Event) {
	switch ev.Kind {
	case platform.EventWindowMoved, platform.EventWindowResized:
		o.noteUserGeometry(ctx, ev)
		return
	case platform.EventWindowFocused:
		o.mu.Lock()
		if ev.Window == o.lastFocused {
			o.mu.Unlock()
			return
		}
		o.lastFocused = ev.Window
		for _, st := range o.states {
			st.UpdateFocusedContainer(ev.Window)
		}
		o.mu.Unlock()
	case platform.EventWindowOpened, platform.EventWindowClosed, platform.EventMonitorsChanged:
		// Membership changes always schedule.
	default:
		return
	}
	o.logger.Debug("scheduling retile", "kind", ev.Kind.String(), "window", ev.Window)
	o.scheduleRetile(ctx)
}

// noteUserGeometry inspects a moved or resized notification. Echoes of the
// tiler's own placements (frames matching the last batch, or anything inside
// the settle window right after a pass) are dropped. A genuine manual change
// to a tracked window marks its monitor dynamic: the container adopts the
// window's new frame and presets stop overwriting it.
func (o *Orchestrator) noteUserGeometry(ctx context.Context, ev platform.Event) {
	if ev.Frame.Width <= 0 || ev.Frame.Height <= 0 {
		return
	}

	o.mu.Lock()
	placed, tracked := o.lastPlaced[ev.Window]
	settling := !o.lastRetileAt.IsZero() && time.Since(o.lastRetileAt) < o.cfg.ZOrderGuard
	if !tracked || settling || ev.Frame == placed {
		o.mu.Unlock()
		return
	}
	marked := false
	for _, st := range o.states {
		c := st.ContainerForWindow(ev.Window)
		if c == nil {
			continue
		}
		st.MarkDynamic()
		c.Frame = ev.Frame
		o.lastPlaced[ev.Window] = ev.Frame
		marked = true
		break
	}
	o.mu.Unlock()

	if marked {
		o.logger.Info("manual geometry change, switching monitor to dynamic layout", "window", ev.Window)
		o.scheduleRetile(ctx)
	}
}

// scheduleRetile arms the trailing-edge debounce timer, cancelling and
// replacing any pending one. Only one retile task is ever in flight.
func (o *Orchestrator) scheduleRetile(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return
	}
	o.retileGen++
	gen := o.retileGen
	if o.retileTimer != nil {
		o.retileTimer.Stop()
	}
	o.retileTimer = time.AfterFunc(o.cfg.DebounceDelay, func() {
		o.mu.Lock()
		if !o.running || gen != o.retileGen {
			o.mu.Unlock()
			return
		}
		o.retileTimer = nil
		o.mu.Unlock()
		o.performTile(ctx)
	})
}

// RetileNow runs a retile pass immediately, outside the debounce path.
func (o *Orchestrator) RetileNow(ctx context.Context) Result {
	return o.performTile(ctx)
}

// performTile is the single retile pass: snapshot, partition windows by
// monitor, reconcile container membership, run the layout engine per
// container, and submit one placement batch. tileMu guarantees batches never
// overlap.
func (o *Orchestrator) performTile(ctx context.Context) Result {
	o.tileMu.Lock()
	defer o.tileMu.Unlock()

	cfg := o.configSnapshot()

	monitors, err := o.monitors.ConnectedMonitors()
	if err != nil {
		return o.finish(Result{Kind: ResultFailed, Reason: fmt.Sprintf("monitor enumeration: %v", err)})
	}
	windows, err := o.windows.VisibleWindows()
	if err != nil {
		return o.finish(Result{Kind: ResultFailed, Reason: fmt.Sprintf("window enumeration: %v", err)})
	}

	tileable := make([]platform.WindowInfo, 0, len(windows))
	for _, w := range windows {
		if !w.IsFloating {
			tileable = append(tileable, w)
		}
	}
	if len(tileable) == 0 {
		return o.finish(Result{Kind: ResultNoWindowsToTile})
	}
	if len(monitors) == 0 {
		return o.finish(Result{Kind: ResultFailed, Reason: "no connected monitors"})
	}

	actualFocus := o.snapshotFocus()
	byMonitor := partitionByMonitor(tileable, monitors)

	type containerJob struct {
		input layout.Input
		id    tiling.ContainerID
	}
	var jobs []containerJob
	infoByID := make(map[platform.WindowID]platform.WindowInfo, len(windows))
	for _, w := range windows {
		infoByID[w.ID] = w
	}

	o.mu.Lock()
	focusChanged := actualFocus != o.prevActualFocus
	o.prevActualFocus = actualFocus

	// Reconcile every connected monitor against the full snapshot first, so a
	// window that crossed monitors leaves its old containers before layout
	// runs; states for disconnected monitors are retired.
	connected := make(map[platform.MonitorID]bool, len(monitors))
	for _, mon := range monitors {
		connected[mon.ID] = true
		st := o.ensureStateLocked(mon.ID)
		o.reconcileMembershipLocked(st, byMonitor[mon.ID])
	}
	o.dropDisconnectedLocked(connected)

	for _, mon := range monitors {
		wins := byMonitor[mon.ID]
		if len(wins) == 0 {
			continue
		}
		st := o.states[mon.ID]

		// Ring focus follows a fresh actual focus onto resizable windows
		// only; a focused non-resizable window leaves the accordion frozen at
		// the last tileable focus, and an unchanged focus never overrides an
		// explicit ring cycle.
		if info, ok := infoByID[actualFocus]; focusChanged && ok && info.IsResizable {
			if c := st.ContainerForWindow(actualFocus); c != nil {
				c.FocusWindow(actualFocus)
				st.UpdateFocusedContainer(actualFocus)
			}
		}

		if st.ActiveLayout() != tiling.LayoutDynamic {
			frames := tiling.ContainerFrames(st.ActiveLayout(), mon.VisibleFrame, cfg.Margin, cfg.Padding)
			st.ApplyContainerFrames(frames)
		} else {
			// A dynamic container that never saw a manual frame (restored
			// state on a fresh daemon) fills the work area.
			for _, c := range st.Containers() {
				if c.Frame.Width <= 0 || c.Frame.Height <= 0 {
					c.Frame = mon.VisibleFrame
				}
			}
		}

		for pos, c := range st.Containers() {
			if c.Len() == 0 {
				continue
			}
			input := layout.Input{
				Container:   c.Frame,
				Offset:      cfg.AccordionOffset,
				Orientation: st.OrientationAt(pos),
				ActualFocus: actualFocus,
			}
			if f, ok := c.FocusedWindow(); ok {
				input.RingFocus = f
			}
			for _, id := range c.Windows() {
				if info, ok := infoByID[id]; ok {
					input.Windows = append(input.Windows, info)
				}
			}
			jobs = append(jobs, containerJob{input: input, id: c.ID})
		}
	}
	o.mu.Unlock()

	var placements []platform.Placement
	signatures := make(map[tiling.ContainerID]string, len(jobs))
	placedBy := make(map[tiling.ContainerID][]platform.WindowID, len(jobs))
	for _, job := range jobs {
		res := layout.Calculate(job.input)
		placements = append(placements, res.Placements...)
		signatures[job.id] = containerSignature(job.input)
		ids := make([]platform.WindowID, 0, len(res.Placements))
		for _, p := range res.Placements {
			ids = append(ids, p.WindowID)
		}
		placedBy[job.id] = ids
	}

	if len(placements) == 0 {
		return o.finish(Result{Kind: ResultNoWindowsToTile})
	}

	duration := cfg.AnimationDuration
	placedFrames := make(map[platform.WindowID]platform.Rect, len(placements))
	for _, p := range placements {
		placedFrames[p.WindowID] = p.Frame
	}
	o.mu.Lock()
	if !o.firstTileDone && !cfg.AnimateFirstTile {
		duration = 0
	}
	o.firstTileDone = true
	o.lastPlaced = placedFrames
	o.mu.Unlock()

	// One atomic batch per pass; per-window failures inside the batch are the
	// positioner's to tolerate.
	if err := o.positioner.ApplyBatch(ctx, placements, duration); err != nil {
		if ctx.Err() != nil {
			return o.finish(Result{Kind: ResultFailed, Reason: "cancelled"})
		}
		o.logger.Warn("placement batch reported errors", "error", err)
	}

	o.raiseChanged(signatures, placedBy, actualFocus)
	o.persistStates()

	return o.finish(Result{Kind: ResultSuccess, Tiled: len(placements)})
}

// raiseChanged re-raises only containers whose membership or focus signature
// changed since the previous pass; inside the z-order guard window, unchanged
// containers are never touched. Within a raise batch the actually focused
// window always goes last so it ends on top.
func (o *Orchestrator) raiseChanged(signatures map[tiling.ContainerID]string, placedBy map[tiling.ContainerID][]platform.WindowID, actualFocus platform.WindowID) {
	o.mu.Lock()
	withinGuard := !o.lastRetileAt.IsZero() && time.Since(o.lastRetileAt) < o.cfg.ZOrderGuard
	prev := o.lastSignatures
	o.lastSignatures = signatures
	o.lastRetileAt = time.Now()
	o.mu.Unlock()

	changed := make([]tiling.ContainerID, 0, len(signatures))
	for id, sig := range signatures {
		if prev[id] != sig {
			changed = append(changed, id)
		}
	}
	if len(changed) == 0 {
		return
	}
	if withinGuard {
		o.logger.Debug("z-order guard active, raising changed containers only", "containers", len(changed))
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i] < changed[j] })

	var batch []platform.WindowID
	focusSeen := false
	for _, id := range changed {
		for _, wid := range placedBy[id] {
			if wid == actualFocus {
				focusSeen = true
				continue
			}
			batch = append(batch, wid)
		}
	}
	if focusSeen {
		batch = append(batch, actualFocus)
	}
	if len(batch) == 0 {
		return
	}
	if err := o.positioner.Raise(batch); err != nil {
		o.logger.Warn("raise batch failed", "error", err)
	}
}

// snapshotFocus reads the OS focus, falling back to the last focused window
// when the window system reports none. The orchestrator never fails an
// operation for want of a focused window.
func (o *Orchestrator) snapshotFocus() platform.WindowID {
	if info, err := o.windows.FocusedWindow(); err == nil && info != nil {
		o.mu.Lock()
		o.lastFocused = info.ID
		o.mu.Unlock()
		return info.ID
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastFocused
}

// ensureStateLocked returns the monitor's tiling state, creating and (when a
// store is configured) restoring it on first contact. The first window seen
// on a fresh monitor seeds the monocle layout.
func (o *Orchestrator) ensureStateLocked(id platform.MonitorID) *tiling.MonitorState {
	if st, ok := o.states[id]; ok {
		return st
	}
	layoutID := o.cfg.DefaultLayout
	st := tiling.NewMonitorState(id, layoutID)
	if o.store != nil {
		if savedLayout, memory, orientations, ok := o.store.LoadMonitor(id); ok {
			if savedLayout.Valid() || savedLayout == tiling.LayoutDynamic {
				st = tiling.NewMonitorState(id, savedLayout)
			}
			st.RestoreMemory(memory)
			for pos, orient := range orientations {
				st.SetOrientationAt(pos, orient)
			}
		}
	}
	o.states[id] = st
	return st
}

// dropDisconnectedLocked retires tiling state for monitors that are no longer
// connected. A state with slot memory keeps its persisted record so a
// reconnect restores the arrangement; a state with nothing to restore has its
// record deleted too.
func (o *Orchestrator) dropDisconnectedLocked(connected map[platform.MonitorID]bool) {
	for id, st := range o.states {
		if connected[id] {
			continue
		}
		if o.store != nil && len(st.Memory()) == 0 {
			if err := o.store.DeleteMonitor(id); err != nil {
				o.logger.Warn("failed to delete monitor record", "monitor", id, "error", err)
			}
		}
		delete(o.states, id)
		o.logger.Info("monitor disconnected, tiling state retired", "monitor", id)
	}
}

// reconcileMembershipLocked removes closed windows and appends newly seen
// windows without reshuffling existing relative order.
func (o *Orchestrator) reconcileMembershipLocked(st *tiling.MonitorState, wins []platform.WindowInfo) {
	present := make(map[platform.WindowID]bool, len(wins))
	for _, w := range wins {
		present[w.ID] = true
	}
	for _, c := range st.Containers() {
		for _, id := range c.Windows() {
			if !present[id] {
				c.RemoveWindow(id)
			}
		}
	}
	for _, w := range wins {
		if st.ContainerForWindow(w.ID) == nil {
			st.AssignWindow(w.ID, nil)
		}
	}
}

func (o *Orchestrator) persistStates() {
	if o.store == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, st := range o.states {
		orientations := make(map[int]tiling.Orientation, len(st.Containers()))
		for pos := range st.Containers() {
			orientations[pos] = st.OrientationAt(pos)
		}
		if err := o.store.SaveMonitor(id, st.ActiveLayout(), st.Memory(), orientations); err != nil {
			o.logger.Warn("failed to persist monitor state", "monitor", id, "error", err)
		}
	}
}

func (o *Orchestrator) finish(r Result) Result {
	o.mu.Lock()
	o.lastResult = r
	o.mu.Unlock()
	if r.Kind == ResultFailed {
		o.logger.Warn("retile failed", "reason", r.Reason)
	}
	return r
}

// partitionByMonitor buckets windows by which monitor contains their center.
// Windows outside every monitor fall back to the main monitor.
func partitionByMonitor(windows []platform.WindowInfo, monitors []platform.MonitorInfo) map[platform.MonitorID][]platform.WindowInfo {
	main := monitors[0].ID
	for _, m := range monitors {
		if m.IsMain {
			main = m.ID
			break
		}
	}
	out := make(map[platform.MonitorID][]platform.WindowInfo)
	for _, w := range windows {
		target := main
		for _, m := range monitors {
			if m.Frame.Contains(w.Frame.CenterX(), w.Frame.CenterY()) {
				target = m.ID
				break
			}
		}
		out[target] = append(out[target], w)
	}
	return out
}

// containerSignature encodes a container's membership and ring focus; a
// changed signature is what qualifies the container for a re-raise.
func containerSignature(in layout.Input) string {
	sig := fmt.Sprintf("f:%d|", in.RingFocus)
	for _, w := range in.Windows {
		sig += fmt.Sprintf("%d,", w.ID)
	}
	return sig
}
