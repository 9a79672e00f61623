package engine

import (
	"context"
	"sync"

	"github.com/roach88/nucleus/internal/state"
)

type pollStatus int

const (
	statusPending pollStatus = iota
	statusReady
	statusFailed
)

// Poll is the outcome of probing state once: pending, ready with a value,
// or failed with an error.
type Poll[T any] struct {
	status pollStatus
	value  T
	err    error
}

// Pending means the awaited result is not in state yet.
func Pending[T any]() Poll[T] {
	return Poll[T]{status: statusPending}
}

// Ready completes the future with v.
func Ready[T any](v T) Poll[T] {
	return Poll[T]{status: statusReady, value: v}
}

// Failed completes the future with err.
func Failed[T any](err error) Poll[T] {
	return Poll[T]{status: statusFailed, err: err}
}

// IsPending reports whether the poll is not yet terminal.
func (p Poll[T]) IsPending() bool {
	return p.status == statusPending
}

// Result returns the value or the error of a terminal poll.
func (p Poll[T]) Result() (T, error) {
	return p.value, p.err
}

// Probe inspects a snapshot and reports whether the awaited result is there.
// Probes must be pure and cheap; they run once per published snapshot.
type Probe[T any] func(*state.State) Poll[T]

// Future awaits a result that some action will eventually place in state.
//
// Once the probe reports a terminal outcome the Future latches it: every
// later Poll or Await returns the same outcome, whatever state does next.
type Future[T any] struct {
	engine *Engine
	probe  Probe[T]

	mu      sync.Mutex
	done    bool
	result  Poll[T]
	onLatch func(Poll[T])
}

// NewFuture creates a future that probes e's snapshots.
func NewFuture[T any](e *Engine, probe Probe[T]) *Future[T] {
	return &Future[T]{engine: e, probe: probe}
}

// Completed creates a future that is already terminal with p.
func Completed[T any](p Poll[T]) *Future[T] {
	return &Future[T]{done: true, result: p}
}

// OnLatch registers fn to run once, right after the future latches its
// terminal outcome. It is meant for releasing the state the probe read.
// Completed futures never call fn. Returns f.
func (f *Future[T]) OnLatch(fn func(Poll[T])) *Future[T] {
	f.mu.Lock()
	f.onLatch = fn
	f.mu.Unlock()
	return f
}

// Poll probes the latest snapshot once.
func (f *Future[T]) Poll() Poll[T] {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return f.result
	}
	p := f.probe(f.engine.State())
	var latched func(Poll[T])
	if !p.IsPending() {
		f.done = true
		f.result = p
		latched = f.onLatch
	}
	f.mu.Unlock()

	if latched != nil {
		latched(p)
	}
	return p
}

// Await blocks until the future is terminal, ctx is done, or the engine
// stops. Cancelling ctx abandons the wait only; the underlying work keeps
// running and its result still lands in state.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	var zero T
	for {
		var changed, stopped <-chan struct{}
		if f.engine != nil {
			changed = f.engine.Changed()
			stopped = f.engine.Stopped()
		}
		if p := f.Poll(); !p.IsPending() {
			return p.Result()
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-changed:
		case <-stopped:
			// One last look: the final action may have completed us.
			if p := f.Poll(); !p.IsPending() {
				return p.Result()
			}
			return zero, NewStoppedError()
		}
	}
}
