package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RejectsBeyondCapacity(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	p := NewPool(2, PoolReject, m)
	release := make(chan struct{})

	for i := 0; i < 2; i++ {
		require.NoError(t, p.Submit(context.Background(), func(context.Context) { <-release }))
	}

	err := p.Submit(context.Background(), func(context.Context) {})
	require.Error(t, err)
	assert.True(t, IsPoolSaturated(err))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.poolRejected))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.poolInFlight))

	close(release)
	p.Wait()
	assert.Equal(t, 0.0, promtest.ToFloat64(m.poolInFlight))

	require.NoError(t, p.Submit(context.Background(), func(context.Context) {}))
	p.Wait()
}

func TestPool_BlockModeWaitsForCapacity(t *testing.T) {
	p := NewPool(1, PoolBlock, nil)
	release := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func(context.Context) { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Submit(ctx, func(context.Context) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, p.Submit(context.Background(), func(context.Context) {}))
	p.Wait()
}

func TestPool_JobContextOutlivesSubmitter(t *testing.T) {
	p := NewPool(1, PoolReject, nil)
	ctx, cancel := context.WithCancel(context.Background())

	var jobErr atomic.Value
	started := make(chan struct{})
	proceed := make(chan struct{})
	require.NoError(t, p.Submit(ctx, func(jobCtx context.Context) {
		close(started)
		<-proceed
		jobErr.Store(jobCtx.Err() == nil)
	}))

	<-started
	cancel()
	close(proceed)
	p.Wait()

	assert.Equal(t, true, jobErr.Load())
}

func TestPool_DefaultSize(t *testing.T) {
	assert.Equal(t, DefaultPoolSize, NewPool(0, PoolReject, nil).Size())
}
