package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/action"
)

func TestActionQueue_FIFOAndStamping(t *testing.T) {
	q := newActionQueue(NewClock())

	for _, addr := range []string{"A", "B", "C"} {
		_, ok := q.Enqueue(action.GetEntry{Address: address(addr)})
		require.True(t, ok)
	}
	assert.Equal(t, 3, q.Len())

	for i, want := range []string{"A", "B", "C"} {
		w, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, int64(i+1), w.ID)
		assert.Equal(t, address(want), w.Action.(action.GetEntry).Address)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestActionQueue_CloseRejectsAndWakes(t *testing.T) {
	q := newActionQueue(NewClock())
	q.Enqueue(action.InitDNA{Address: "dna"})
	q.Close()
	q.Close() // idempotent

	_, ok := q.Enqueue(action.InitDNA{Address: "dna"})
	assert.False(t, ok)
	assert.False(t, q.Drained(), "queued wrapper still pending")

	select {
	case <-q.Wait():
	case <-time.After(time.Second):
		t.Fatal("closed queue should wake waiters")
	}

	_, ok = q.TryDequeue()
	require.True(t, ok)
	assert.True(t, q.Drained())
}
