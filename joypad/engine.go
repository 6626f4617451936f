package joypad

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Alia5/kbjoypad/internal/log"
)

// State is the engine lifecycle state.
type State uint8

const (
	Uninitialized State = iota
	Initialized
	Closed
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Closed:
		return "closed"
	}
	return "uninitialized"
}

const overrunWarnEvery = 5 * time.Second

type stick struct {
	label   string
	indices []int
	buttons []LogicalButton
}

// Engine turns an InputSource into joypad frames.
//
// In Driven mode Start launches a goroutine that recomputes a frame every
// period and queries only read. In Polled mode there is no goroutine and a
// value query recomputes first when the last frame is older than one
// period. The mode is fixed at construction. All state lives behind one
// mutex; queries from any goroutine are safe.
type Engine struct {
	mu       sync.Mutex
	state    State
	settings Settings
	src      InputSource
	logger   *slog.Logger
	now      func() time.Time

	axisCount   int
	buttonCount int
	sticks      []stick
	buttons     []LogicalButton
	hold        *LogicalButton
	mux         *Multiplexer
	agg         aggregator

	frame    Frame
	last     time.Time
	lastCost time.Duration

	once    *log.Once
	overrun *log.Throttle

	subsMu sync.Mutex
	subs   []func(Snapshot)

	started   bool
	stop      chan struct{}
	done      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// New validates m and builds an engine reading from src. The engine starts
// Uninitialized; no source is touched until the first recompute.
func New(m *Mapping, src InputSource, logger *slog.Logger) (*Engine, error) {
	if m == nil {
		return nil, configErrorf("mapping", "nil mapping")
	}
	if src == nil {
		return nil, configErrorf("source", "nil input source")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	settings := m.Settings
	settings.JoypadIndices = append([]int(nil), settings.JoypadIndices...)

	e := &Engine{
		settings:    settings,
		src:         src,
		logger:      logger,
		now:         time.Now,
		axisCount:   m.AxisCount,
		buttonCount: m.ButtonCount,
		mux:         NewMultiplexer(settings.JoypadIndices, logger),
		agg:         aggregator{logger: logger, deadzone: settings.Deadzone},
		once:        log.NewOnce(),
		overrun:     log.NewThrottle(overrunWarnEvery),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		closed:      make(chan struct{}),
	}
	for _, s := range m.Sticks {
		st := stick{label: s.Label, indices: append([]int(nil), s.Indices...)}
		for _, b := range s.Buttons {
			st.buttons = append(st.buttons, newLogicalButton(b))
		}
		e.sticks = append(e.sticks, st)
	}
	for _, b := range m.Buttons {
		e.buttons = append(e.buttons, newLogicalButton(b))
	}
	if m.Hold != nil {
		h := newLogicalButton(*m.Hold)
		h.Outputs = nil
		e.hold = &h
	}
	e.frame = newFrame(e.axisCount, e.buttonCount, m.Sticks)
	return e, nil
}

// Mode returns the scheduling mode chosen at construction.
func (e *Engine) Mode() Mode { return e.settings.Mode }

// Period returns the recompute period.
func (e *Engine) Period() time.Duration { return e.settings.Period }

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Done is closed once the engine reaches Closed, either through Close or
// because the input source asked to shut down.
func (e *Engine) Done() <-chan struct{} { return e.closed }

// OnFrame registers fn to receive a snapshot after every recompute. fn runs
// outside the engine lock on the goroutine that recomputed.
func (e *Engine) OnFrame(fn func(Snapshot)) {
	e.subsMu.Lock()
	e.subs = append(e.subs, fn)
	e.subsMu.Unlock()
}

// Start launches the update goroutine in Driven mode. In Polled mode it
// only checks the lifecycle; frames are computed by queries.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Closed {
		return ErrClosed
	}
	if e.started {
		return ErrAlreadyStarted
	}
	e.started = true
	if e.settings.Mode == Polled {
		close(e.done)
		return nil
	}
	go e.run(ctx)
	return nil
}

// Close stops the update goroutine and moves the engine to Closed. Closing
// twice returns ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.state == Closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.state = Closed
	started := e.started
	e.mu.Unlock()

	e.markClosed()
	if started {
		<-e.done
	}
	e.logger.Info("joypad engine closed")
	return nil
}

func (e *Engine) markClosed() {
	e.closeOnce.Do(func() {
		close(e.stop)
		close(e.closed)
	})
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	e.mu.Lock()
	if e.state == Uninitialized {
		e.initLocked()
	}
	e.mu.Unlock()

	ticker := time.NewTicker(e.settings.Period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.closeFromLoop("context done")
			return
		case <-e.stop:
			return
		case <-ticker.C:
		}

		if e.settings.AllowClose && e.src.ShouldClose() {
			e.closeFromLoop("close requested by input source")
			return
		}

		start := e.now()
		e.mu.Lock()
		if e.state != Initialized {
			e.mu.Unlock()
			return
		}
		e.updateLocked()
		snap, publish := e.snapshotForSubsLocked()
		e.mu.Unlock()
		if publish {
			e.publish(snap)
		}

		if cost := e.now().Sub(start); cost > e.settings.Period {
			e.overrun.Log(e.logger, slog.LevelWarn, "overrun", "joypad update overran its period",
				"cost", cost, "period", e.settings.Period)
			time.Sleep(time.Millisecond)
			// Drop the tick that came due meanwhile; the next frame waits
			// a full period.
			ticker.Reset(e.settings.Period)
		}
	}
}

func (e *Engine) closeFromLoop(reason string) {
	e.mu.Lock()
	if e.state == Closed {
		e.mu.Unlock()
		return
	}
	e.state = Closed
	e.mu.Unlock()
	e.markClosed()
	e.logger.Info("joypad engine closed", "reason", reason)
}

// Update recomputes a frame now when the engine is polled and the last
// frame is stale, initializing first if needed. In Driven mode it does
// nothing. It is the hook for hosts that drive a polled engine from their
// own loop.
func (e *Engine) Update() error {
	if e.settings.Mode == Driven {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.state == Closed {
			return ErrClosed
		}
		return nil
	}
	return e.query(func() error { return nil })
}

func (e *Engine) initLocked() {
	e.mux.Assign(e.src.Enumerate())
	e.state = Initialized
	e.logger.Info("joypad engine initialized",
		"mode", e.settings.Mode, "period", e.settings.Period, "deadzone", e.settings.Deadzone,
		"axes", e.axisCount, "buttons", e.buttonCount, "sticks", len(e.sticks))
}

func (e *Engine) needUpdateLocked() bool {
	return e.last.IsZero() || e.now().Sub(e.last) > e.settings.Period
}

// updateLocked computes one frame: sample the sources, step the stick
// buttons into the axes, clamp, project sticks, resolve the hold modifier,
// step the output buttons and round them.
func (e *Engine) updateLocked() {
	start := e.now()
	e.src.Poll()
	e.mux.Sample(e.src)
	raw := e.mux.Axes()

	clear(e.frame.Axes)
	clear(e.frame.Buttons)

	for i := range e.sticks {
		for j := range e.sticks[i].buttons {
			b := &e.sticks[i].buttons[j]
			b.Step(e.edges(b), false)
			e.agg.add(e.frame.Axes, b, raw)
		}
	}
	clampAll(e.frame.Axes)
	for i, s := range e.sticks {
		e.frame.Sticks[i] = Project(e.frame.Sticks[i], e.frame.Axes, s.indices)
	}

	hold := false
	if e.hold != nil {
		e.hold.Step(e.edges(e.hold), false)
		hold = e.hold.Active
	}
	for i := range e.buttons {
		b := &e.buttons[i]
		b.Step(e.edges(b), hold)
		e.agg.add(e.frame.Buttons, b, raw)
	}
	roundAll(e.frame.Buttons)

	e.frame.Hold = hold
	e.frame.Seq++
	e.frame.At = start
	e.last = start
	e.lastCost = e.now().Sub(start)
	e.logger.Log(context.Background(), log.LevelTrace, "joypad frame",
		"seq", e.frame.Seq, "axes", e.frame.Axes, "buttons", e.frame.Buttons)
}

func (e *Engine) edges(b *LogicalButton) Edges {
	var out Edges
	for _, s := range b.Sources {
		var ed Edges
		switch s.Kind {
		case SourceKey:
			ed = Edges{
				Down:     e.src.KeyDown(s.Key),
				Pressed:  e.src.KeyPressed(s.Key),
				Released: e.src.KeyReleased(s.Key),
			}
		case SourceJoypadButton:
			ed = e.mux.ButtonEdges(s.Index, b.Alias)
		}
		out.Down = out.Down || ed.Down
		out.Pressed = out.Pressed || ed.Pressed
		out.Released = out.Released || ed.Released
	}
	return out
}

// prepareLocked enforces the lifecycle for a value query and, in Polled
// mode, initializes lazily and recomputes a stale frame. It reports whether
// a frame was computed.
func (e *Engine) prepareLocked() (bool, error) {
	switch e.state {
	case Closed:
		return false, ErrClosed
	case Uninitialized:
		if e.settings.Mode == Driven {
			return false, ErrNotInitialized
		}
		e.initLocked()
	}
	if e.settings.Mode == Polled && e.needUpdateLocked() {
		e.updateLocked()
		return true, nil
	}
	return false, nil
}

func (e *Engine) query(fn func() error) error {
	e.mu.Lock()
	updated, err := e.prepareLocked()
	if err == nil {
		err = fn()
	}
	var snap Snapshot
	publish := false
	if updated {
		snap, publish = e.snapshotForSubsLocked()
	}
	e.mu.Unlock()
	if publish {
		e.publish(snap)
	}
	return err
}

func (e *Engine) snapshotForSubsLocked() (Snapshot, bool) {
	e.subsMu.Lock()
	n := len(e.subs)
	e.subsMu.Unlock()
	if n == 0 {
		return Snapshot{}, false
	}
	return e.snapshotLocked(), true
}

func (e *Engine) publish(s Snapshot) {
	e.subsMu.Lock()
	subs := slices.Clone(e.subs)
	e.subsMu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

func (e *Engine) countLocked() error {
	if e.state == Closed {
		return ErrClosed
	}
	return nil
}

// AxisCount returns the number of output axes.
func (e *Engine) AxisCount() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.axisCount, e.countLocked()
}

// ButtonCount returns the number of output buttons.
func (e *Engine) ButtonCount() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buttonCount, e.countLocked()
}

// StickCount returns the number of stick groups.
func (e *Engine) StickCount() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sticks), e.countLocked()
}

// StickDoF returns the number of axes in stick id.
func (e *Engine) StickDoF(id int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.countLocked(); err != nil {
		return 0, err
	}
	if id < 0 || id >= len(e.sticks) {
		return 0, e.notFound("stick", id, len(e.sticks))
	}
	return len(e.sticks[id].indices), nil
}

// TrackballCount is always zero.
func (e *Engine) TrackballCount() (int, error) { return e.unsupportedCount() }

// HatCount is always zero.
func (e *Engine) HatCount() (int, error) { return e.unsupportedCount() }

// TouchSurfaceCount is always zero.
func (e *Engine) TouchSurfaceCount() (int, error) { return e.unsupportedCount() }

func (e *Engine) unsupportedCount() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return 0, e.countLocked()
}

// AxisValue returns output axis id of the current frame, in [-1,1].
func (e *Engine) AxisValue(id int) (float64, error) {
	var v float64
	err := e.query(func() error {
		if id < 0 || id >= len(e.frame.Axes) {
			return e.notFound("axis", id, len(e.frame.Axes))
		}
		v = e.frame.Axes[id]
		return nil
	})
	return v, err
}

// ButtonValue returns output button id of the current frame, 0 or 1.
func (e *Engine) ButtonValue(id int) (float64, error) {
	var v float64
	err := e.query(func() error {
		if id < 0 || id >= len(e.frame.Buttons) {
			return e.notFound("button", id, len(e.frame.Buttons))
		}
		v = e.frame.Buttons[id]
		return nil
	})
	return v, err
}

// StickValue returns stick id of the current frame. Polar mode converts
// two-axis sticks to (radius, angle in radians).
func (e *Engine) StickValue(id int, mode CoordinateMode) ([]float64, error) {
	var v []float64
	err := e.query(func() error {
		if id < 0 || id >= len(e.frame.Sticks) {
			return e.notFound("stick", id, len(e.frame.Sticks))
		}
		v = append([]float64(nil), e.frame.Sticks[id]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if mode == Polar {
		v = ToPolar(v)
	}
	return v, nil
}

// Trackball always fails with ErrUnsupported.
func (e *Engine) Trackball(id int) ([]float64, error) { return nil, e.unsupported("trackball", id) }

// Hat always fails with ErrUnsupported.
func (e *Engine) Hat(id int) (uint8, error) { return 0, e.unsupported("hat", id) }

// TouchSurface always fails with ErrUnsupported.
func (e *Engine) TouchSurface(id int) ([][2]float64, error) { return nil, e.unsupported("touch", id) }

func (e *Engine) unsupported(kind string, id int) error {
	e.once.Log(e.logger, slog.LevelError, "unsupported:"+kind, "joypad element not supported", "kind", kind, "id", id)
	return fmt.Errorf("%s %d: %w", kind, id, ErrUnsupported)
}

func (e *Engine) notFound(kind string, id, count int) error {
	e.logger.Error("joypad element out of range", "kind", kind, "id", id, "count", count)
	return fmt.Errorf("%s %d of %d: %w", kind, id, count, ErrNotFound)
}

// Deadzone returns the current joypad axis deadzone.
func (e *Engine) Deadzone() (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.agg.deadzone, e.countLocked()
}

// SetDeadzone replaces the joypad axis deadzone for subsequent frames.
func (e *Engine) SetDeadzone(d float64) error {
	if d < 0 || d > 1 {
		return configErrorf("deadzone", "%v outside [0,1]", d)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Closed {
		return ErrClosed
	}
	if e.agg.deadzone != d {
		e.logger.Info("joypad deadzone changed", "from", e.agg.deadzone, "to", d)
	}
	e.agg.deadzone = d
	return nil
}

// Snapshot returns a copy of the current state for presentation. In Polled
// mode it recomputes a stale frame like any other value query.
func (e *Engine) Snapshot() (Snapshot, error) {
	var s Snapshot
	err := e.query(func() error {
		s = e.snapshotLocked()
		return nil
	})
	return s, err
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		State:         e.state,
		Mode:          e.settings.Mode,
		Period:        e.settings.Period,
		Deadzone:      e.agg.deadzone,
		Frame:         e.frame.clone(),
		FrameDuration: e.lastCost,
		Joypads:       e.mux.Slots(),
		RawAxes:       append([]float64(nil), e.mux.Axes()...),
		RawButtons:    append([]bool(nil), e.mux.Buttons()...),
	}
	for i := range e.sticks {
		st := StickState{Label: e.sticks[i].label, Indices: append([]int(nil), e.sticks[i].indices...)}
		for j := range e.sticks[i].buttons {
			st.Buttons = append(st.Buttons, buttonState(&e.sticks[i].buttons[j]))
		}
		s.Sticks = append(s.Sticks, st)
	}
	for i := range e.buttons {
		s.Buttons = append(s.Buttons, buttonState(&e.buttons[i]))
	}
	if e.hold != nil {
		h := buttonState(e.hold)
		s.Hold = &h
	}
	return s
}
