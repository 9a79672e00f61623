package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/state"
)

// ActionLog receives every applied action, in application order.
// Implemented by store.ActionLog.
type ActionLog interface {
	Append(ctx context.Context, w action.Wrapper) error
}

// Engine is the single-writer action dispatch engine.
//
// Thread-safety model:
//   - Dispatch(), State(), Changed(), NewRequestID(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//
// INVARIANTS:
//   - Every published snapshot is the result of applying exactly one more
//     action to the previous snapshot
//   - Snapshot Seq values strictly increase
//   - Actions are applied in the order Dispatch accepted them
type Engine struct {
	clock   *Clock
	queue   *actionQueue
	current atomic.Pointer[state.State]

	mu      sync.Mutex
	changed chan struct{} // Closed and replaced on every publish

	stopOnce sync.Once
	stopped  chan struct{} // Closed when Run returns

	log     ActionLog
	metrics *Metrics
	ids     IDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithActionLog appends every applied action to l.
func WithActionLog(l ActionLog) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithMetrics records dispatch and reduce metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithIDGenerator sets the request id generator (default UUIDv7Generator).
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock sets the logical clock, e.g. to continue after a persisted log.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an engine whose first published snapshot is initial.
func New(initial *state.State, opts ...Option) *Engine {
	e := &Engine{
		clock:   NewClock(),
		changed: make(chan struct{}),
		stopped: make(chan struct{}),
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.queue = newActionQueue(e.clock)
	e.current.Store(initial)
	return e
}

// Dispatch submits a for reduction. It never blocks.
// Returns false if the engine has been stopped.
func (e *Engine) Dispatch(a action.Action) bool {
	_, ok := e.DispatchID(a)
	return ok
}

// DispatchID is Dispatch that also returns the ID the action was stamped
// with. A snapshot with Seq() >= id has applied it.
func (e *Engine) DispatchID(a action.Action) (int64, bool) {
	w, ok := e.queue.Enqueue(a)
	if !ok {
		slog.Warn("action dropped: engine stopped", "kind", a.Kind())
		return 0, false
	}
	slog.Debug("action dispatched", "id", w.ID, "kind", a.Kind())
	e.metrics.observeDispatch(a.Kind(), e.queue.Len())
	return w.ID, true
}

// State returns the latest published snapshot.
func (e *Engine) State() *state.State {
	return e.current.Load()
}

// Changed returns a channel that is closed when the next snapshot is
// published. Callers must obtain the channel before reading State to avoid
// missing a publication.
func (e *Engine) Changed() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changed
}

// Stopped returns a channel that is closed once Run has returned.
func (e *Engine) Stopped() <-chan struct{} {
	return e.stopped
}

// NewRequestID returns a fresh id for correlating a request with its result.
func (e *Engine) NewRequestID() string {
	return e.ids.Generate()
}

// Run starts the reducer loop. Blocks until ctx is cancelled or Stop is
// called and the queue has drained.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// ERROR HANDLING: reducers store failures in state, so the only errors
// here come from the action log. They are logged and the loop continues.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "seq", e.State().Seq())
	defer e.stopOnce.Do(func() { close(e.stopped) })

	for {
		w, ok := e.queue.TryDequeue()
		if ok {
			e.apply(ctx, w)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel is closed with the queue, so this also
			// fires on Stop.
			if e.queue.Drained() {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run applies what is already queued, then returns.
func (e *Engine) Stop() {
	e.queue.Close()
}

// apply reduces one wrapper and publishes the result.
// CRITICAL: Called only from Run() goroutine.
func (e *Engine) apply(ctx context.Context, w action.Wrapper) {
	start := time.Now()
	next := state.Reduce(e.current.Load(), w)
	e.publish(next)
	e.metrics.observeApply(w.Action.Kind(), time.Since(start), e.queue.Len())

	slog.Debug("action applied", "id", w.ID, "kind", w.Action.Kind())

	if e.log == nil {
		return
	}
	if err := e.log.Append(ctx, w); err != nil {
		slog.Error("action log append failed",
			"id", w.ID,
			"kind", w.Action.Kind(),
			"error", err,
		)
	}
}

func (e *Engine) publish(s *state.State) {
	e.current.Store(s)

	e.mu.Lock()
	close(e.changed)
	e.changed = make(chan struct{})
	e.mu.Unlock()
}
