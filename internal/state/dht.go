package state

import (
	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/ir"
)

// DhtState records which entries and links the local DHT shard holds.
// The content itself lives in the CAS and EAV stores.
type DhtState struct {
	entries map[ir.Address]struct{}
	links   map[ir.Link]struct{}
}

func newDhtState() *DhtState {
	return &DhtState{
		entries: map[ir.Address]struct{}{},
		links:   map[ir.Link]struct{}{},
	}
}

// HoldsEntry reports whether the entry at addr has been held.
func (d *DhtState) HoldsEntry(addr ir.Address) bool {
	_, ok := d.entries[addr]
	return ok
}

// HoldsLink reports whether link has been added.
func (d *DhtState) HoldsLink(link ir.Link) bool {
	_, ok := d.links[link]
	return ok
}

func reduceDht(d *DhtState, a action.Action) *DhtState {
	switch a := a.(type) {
	case action.HoldEntry:
		addr := a.Entry.Address()
		if d.HoldsEntry(addr) {
			return d
		}
		next := *d
		next.entries = copyWith(d.entries, addr, struct{}{})
		return &next

	case action.AddLink:
		if d.HoldsLink(a.Link) {
			return d
		}
		next := *d
		next.links = copyWith(d.links, a.Link, struct{}{})
		return &next
	}
	return d
}
