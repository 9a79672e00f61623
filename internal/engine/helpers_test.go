package engine

import (
	"context"
	"testing"
	"time"

	nir "github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/state"
)

func address(s string) nir.Address { return nir.Address(s) }

// startEngine runs a fresh engine until the test ends.
func startEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := New(state.New("alice"), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("engine did not stop")
		}
	})
	return e
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
