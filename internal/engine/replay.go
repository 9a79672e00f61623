package engine

// # Replay
//
// State is a pure function of the applied action sequence:
//
//	state_n = Reduce(... Reduce(Reduce(initial, w_1), w_2) ..., w_n)
//
// so a node persisted through an ActionLog is restored by folding the
// logged wrappers over a fresh initial state, in seq order, with the same
// reducers the live engine uses. There is no separate replay mode.
//
// Effects are not replayed. Content the actions refer to is already in the
// CAS and EAV stores, which were written before the actions were
// dispatched. Requests that were pending at shutdown stay pending; a new
// request for the same key reopens the slot.
//
// The restored engine continues the clock after the last replayed seq, so
// the log keeps a single gap-free total order across restarts.

import (
	"fmt"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/state"
)

// Replay folds ws over initial. IDs must be strictly increasing.
func Replay(initial *state.State, ws []action.Wrapper) (*state.State, error) {
	s := initial
	for _, w := range ws {
		if w.ID <= s.Seq() {
			return nil, fmt.Errorf("replay: action %d is not after seq %d", w.ID, s.Seq())
		}
		s = state.Reduce(s, w)
	}
	return s, nil
}

// Restore creates an engine whose first snapshot is initial with ws
// replayed, and whose clock continues after the last replayed ID.
func Restore(initial *state.State, ws []action.Wrapper, opts ...Option) (*Engine, error) {
	s, err := Replay(initial, ws)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithClock(NewClockAt(s.Seq()))}, opts...)
	return New(s, opts...), nil
}
