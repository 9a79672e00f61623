package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/ir"
)

func TestReduce_SharesUntouchedSubStates(t *testing.T) {
	before := apply(t, New("alice"), initNetwork())
	after := apply(t, before, action.InitDNA{Address: "dna"})

	assert.Same(t, before.Network(), after.Network())
	assert.Same(t, before.Agent(), after.Agent())
	assert.Same(t, before.Dht(), after.Dht())
	assert.NotSame(t, before.Nucleus(), after.Nucleus())
}

func TestReduce_DoesNotMutatePrevious(t *testing.T) {
	before := apply(t, New("alice"), initNetwork())
	_ = apply(t, before, action.GetEntry{Address: "A"})

	_, requested := before.Network().GetEntryResult("A")
	assert.False(t, requested)
	assert.Equal(t, 1, before.HistoryLen())
}

func TestReduce_History(t *testing.T) {
	s := New("alice")
	assert.Empty(t, s.History())
	assert.Equal(t, int64(0), s.Seq())

	s = apply(t, s, initNetwork(), action.InitDNA{Address: "dna"}, action.GetEntry{Address: "A"})

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, int64(3), s.Seq())
	for i, w := range history {
		assert.Equal(t, int64(i+1), w.ID)
	}
	assert.Equal(t, action.KindInitNetwork, history[0].Action.Kind())
	assert.Equal(t, action.KindGetEntry, history[2].Action.Kind())
}

func TestDht_HoldEntryAndLink(t *testing.T) {
	entry := ir.NewEntry("post", "hello")
	link := ir.Link{Base: "B", Target: "T", Tag: "likes"}
	s := apply(t, New("alice"), action.HoldEntry{Entry: entry}, action.AddLink{Link: link})

	assert.True(t, s.Dht().HoldsEntry(entry.Address()))
	assert.True(t, s.Dht().HoldsLink(link))
	assert.False(t, s.Dht().HoldsLink(ir.Link{Base: "B", Target: "T", Tag: "other"}))

	again := apply(t, s, action.AddLink{Link: link})
	assert.Same(t, s.Dht(), again.Dht())
}
