package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps action wrappers.
//
// Thread-safety: Clock is safe for concurrent use, though the engine only
// advances it while holding the queue lock.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that continues after start, e.g. when the
// action log already holds start entries.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next ID.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued ID without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
