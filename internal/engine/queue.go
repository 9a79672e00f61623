package engine

import (
	"sync"

	"github.com/roach88/nucleus/internal/action"
)

// actionQueue is a thread-safe unbounded FIFO of action wrappers.
//
// Dispatch never blocks, so reducers' callers (network handlers, timers,
// worker pool jobs) cannot deadlock against the Run loop.
//
// A buffered signal channel of size 1 lets Run wait on availability
// together with context cancellation.
type actionQueue struct {
	mu      sync.Mutex
	clock   *Clock
	pending []action.Wrapper
	closed  bool
	signal  chan struct{}
}

func newActionQueue(clock *Clock) *actionQueue {
	return &actionQueue{
		clock:   clock,
		pending: make([]action.Wrapper, 0, 64),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue stamps a with the next clock value and appends it.
// Returns false if the queue is closed.
func (q *actionQueue) Enqueue(a action.Action) (action.Wrapper, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return action.Wrapper{}, false
	}

	w := action.Wrapper{ID: q.clock.Next(), Action: a}
	q.pending = append(q.pending, w)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return w, true
}

// TryDequeue removes the front wrapper without blocking.
func (q *actionQueue) TryDequeue() (action.Wrapper, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return action.Wrapper{}, false
	}

	w := q.pending[0]
	// Clear the slot so the backing array does not pin the action.
	q.pending[0] = action.Wrapper{}
	if len(q.pending) == 1 {
		q.pending = q.pending[:0]
	} else {
		q.pending = q.pending[1:]
	}
	return w, true
}

// Wait returns a channel that signals when wrappers may be available.
// It is closed once the queue is closed.
func (q *actionQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued wrappers.
func (q *actionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drained reports whether the queue is closed and empty.
func (q *actionQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.pending) == 0
}

// Close stops accepting wrappers and wakes the consumer.
func (q *actionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
