package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/action"
	nir "github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/state"
)

// entryProbe bridges the get-entry slot for addr.
func entryProbe(addr nir.Address) Probe[*nir.EntryWithMeta] {
	return func(s *state.State) Poll[*nir.EntryWithMeta] {
		result, requested := s.Network().GetEntryResult(addr)
		if !requested || result == nil {
			return Pending[*nir.EntryWithMeta]()
		}
		if result.Err != nil {
			return Failed[*nir.EntryWithMeta](result.Err)
		}
		return Ready(result.Value)
	}
}

func TestFuture_PendingUntilResolved(t *testing.T) {
	e := startEngine(t)
	e.Dispatch(action.InitNetwork{DnaAddress: "dna", AgentID: "alice"})
	e.Dispatch(action.GetEntry{Address: "A"})

	f := NewFuture(e, entryProbe("A"))
	assert.True(t, f.Poll().IsPending())

	go func() {
		time.Sleep(20 * time.Millisecond)
		e.Dispatch(action.GetEntryTimeout{Address: "A"})
	}()

	_, err := f.Await(testContext(t))
	require.Error(t, err)
	assert.True(t, nir.IsTimeout(err))
}

func TestFuture_LatchesTerminalResult(t *testing.T) {
	e := startEngine(t)
	e.Dispatch(action.InitNetwork{DnaAddress: "dna", AgentID: "alice"})
	e.Dispatch(action.GetEntry{Address: "A"})
	e.Dispatch(action.GetEntryTimeout{Address: "A"})

	f := NewFuture(e, entryProbe("A"))
	_, err := f.Await(testContext(t))
	require.Error(t, err)

	// Re-requesting reopens the slot in state, but this future stays done.
	e.Dispatch(action.GetEntry{Address: "A"})
	_, err = NewFuture(e, seqProbe(4)).Await(testContext(t))
	require.NoError(t, err)

	p := f.Poll()
	assert.False(t, p.IsPending())
	_, err = p.Result()
	assert.True(t, nir.IsTimeout(err))
}

func TestFuture_OnLatchRunsOnce(t *testing.T) {
	e := startEngine(t)
	e.Dispatch(action.InitNetwork{DnaAddress: "dna", AgentID: "alice"})
	e.Dispatch(action.GetEntry{Address: "A"})

	var calls int
	f := NewFuture(e, entryProbe("A")).OnLatch(func(p Poll[*nir.EntryWithMeta]) {
		calls++
		assert.False(t, p.IsPending())
	})
	_, err := NewFuture(e, seqProbe(2)).Await(testContext(t))
	require.NoError(t, err)
	f.Poll()
	assert.Zero(t, calls, "not called while pending")

	e.Dispatch(action.GetEntryTimeout{Address: "A"})
	_, err = f.Await(testContext(t))
	require.Error(t, err)
	f.Poll()
	_, _ = f.Await(testContext(t))
	assert.Equal(t, 1, calls)
}

func TestFuture_AwaitHonorsContext(t *testing.T) {
	e := startEngine(t)
	f := NewFuture(e, entryProbe("never"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuture_AwaitReturnsWhenEngineStops(t *testing.T) {
	e := New(state.New("alice"))
	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	f := NewFuture(e, entryProbe("never"))
	go func() {
		time.Sleep(10 * time.Millisecond)
		e.Stop()
	}()

	_, err := f.Await(testContext(t))
	assert.True(t, IsStopped(err))
	require.NoError(t, <-done)
}

func TestFuture_Completed(t *testing.T) {
	ok := Completed(Ready(7))
	v, err := ok.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	boom := errors.New("boom")
	failed := Completed(Failed[int](boom))
	_, err = failed.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}
