package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/ir"
)

// apply reduces actions in order with IDs starting at 1.
func apply(t *testing.T, s *State, actions ...action.Action) *State {
	t.Helper()
	for _, a := range actions {
		s = Reduce(s, action.Wrapper{ID: s.Seq() + 1, Action: a})
	}
	return s
}

func initNetwork() action.InitNetwork {
	return action.InitNetwork{
		DnaAddress: "dna-addr",
		AgentID:    "alice",
		Config:     action.NetworkConfig{Transport: "memory", TimeoutMS: 1000},
	}
}

func dhtData(t *testing.T, addr ir.Address, meta *ir.EntryWithMeta) ir.DhtData {
	t.Helper()
	data, err := ir.NewDhtData("msg-1", "dna-addr", "bob", addr, meta)
	require.NoError(t, err)
	return data
}
