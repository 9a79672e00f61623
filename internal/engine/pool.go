package engine

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

// PoolMode selects what Submit does when the pool is full.
type PoolMode int

const (
	// PoolReject refuses the job with a pool-saturated error.
	PoolReject PoolMode = iota
	// PoolBlock waits for capacity or ctx cancellation.
	PoolBlock
)

// DefaultPoolSize is the default number of concurrent jobs.
const DefaultPoolSize = 16

// Pool runs jobs on at most size goroutines at a time.
//
// Jobs get a context that carries the submitter's values but is never
// cancelled, so abandoning a wait does not abort work whose result other
// readers of state may depend on.
type Pool struct {
	sem     *semaphore.Weighted
	size    int64
	mode    PoolMode
	metrics *Metrics
	wg      sync.WaitGroup
}

// NewPool creates a pool. A size <= 0 selects DefaultPoolSize.
func NewPool(size int, mode PoolMode, m *Metrics) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Pool{
		sem:     semaphore.NewWeighted(int64(size)),
		size:    int64(size),
		mode:    mode,
		metrics: m,
	}
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return int(p.size)
}

// Submit starts job on the pool. In reject mode a full pool returns a
// pool-saturated error at once; in block mode Submit waits for capacity.
func (p *Pool) Submit(ctx context.Context, job func(context.Context)) error {
	switch p.mode {
	case PoolBlock:
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	default:
		if !p.sem.TryAcquire(1) {
			p.metrics.poolRejectedJob()
			slog.Warn("worker pool saturated", "size", p.size)
			return NewPoolSaturatedError(p.size)
		}
	}

	p.wg.Add(1)
	p.metrics.poolStarted()
	jobCtx := context.WithoutCancel(ctx)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		defer p.metrics.poolFinished()
		job(jobCtx)
	}()
	return nil
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
