package state

import "github.com/roach88/nucleus/internal/action"

// history is a persistent singly linked list of applied action wrappers.
// Snapshots share tails, so appending is O(1) and never touches older snapshots.
type history struct {
	wrapper action.Wrapper
	prev    *history
	len     int
}

func (h *history) push(w action.Wrapper) *history {
	n := 1
	if h != nil {
		n = h.len + 1
	}
	return &history{wrapper: w, prev: h, len: n}
}

// slice returns the wrappers oldest first.
func (h *history) slice() []action.Wrapper {
	if h == nil {
		return []action.Wrapper{}
	}
	out := make([]action.Wrapper, h.len)
	for n := h; n != nil; n = n.prev {
		out[n.len-1] = n.wrapper
	}
	return out
}
