package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/dna"
	"github.com/roach88/nucleus/internal/eav"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/network/transport"
	"github.com/roach88/nucleus/internal/ribosome"
	"github.com/roach88/nucleus/internal/runtime"
	"github.com/roach88/nucleus/internal/state"
)

type contextConfig struct {
	dna      *dna.DNA
	ribosome ribosome.Ribosome
	hub      *transport.Hub
	handler  transport.Handler
	pool     *engine.Pool
	timeout  time.Duration
	cas      cas.Storage
	eav      eav.Storage
}

// ContextOption customizes NewContext.
type ContextOption func(*contextConfig)

// WithDNA replaces TestDNA.
func WithDNA(d *dna.DNA) ContextOption {
	return func(c *contextConfig) { c.dna = d }
}

// WithRibosome replaces the CEL ribosome compiled from the DNA.
func WithRibosome(r ribosome.Ribosome) ContextOption {
	return func(c *contextConfig) { c.ribosome = r }
}

// WithHub joins the node to hub instead of a private one.
func WithHub(h *transport.Hub) ContextOption {
	return func(c *contextConfig) { c.hub = h }
}

// WithHandler sets the handler for messages delivered to the node.
func WithHandler(h transport.Handler) ContextOption {
	return func(c *contextConfig) { c.handler = h }
}

// WithPool sets the worker pool.
func WithPool(p *engine.Pool) ContextOption {
	return func(c *contextConfig) { c.pool = p }
}

// WithNetworkTimeout sets the network request timeout (default 200ms).
func WithNetworkTimeout(d time.Duration) ContextOption {
	return func(c *contextConfig) { c.timeout = d }
}

// WithStorage sets the CAS and EAV backends.
func WithStorage(content cas.Storage, triples eav.Storage) ContextOption {
	return func(c *contextConfig) {
		c.cas = content
		c.eav = triples
	}
}

// NewContext builds a runtime context over in-memory storage with a running
// engine that request ids come from deterministically ("<agent>-req-N").
// The engine is stopped when the test ends.
func NewContext(t testing.TB, agentID string, opts ...ContextOption) *runtime.Context {
	t.Helper()

	cfg := contextConfig{
		timeout: 200 * time.Millisecond,
		cas:     cas.NewMemoryStorage(),
		eav:     eav.NewMemoryStorage(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.dna == nil {
		cfg.dna = DNA(t)
	}
	if cfg.ribosome == nil {
		rib, err := ribosome.NewCEL(cfg.dna)
		require.NoError(t, err)
		cfg.ribosome = rib
	}
	if cfg.hub == nil {
		cfg.hub = transport.NewHub()
	}
	if cfg.handler == nil {
		cfg.handler = func(context.Context, transport.Message) {}
	}

	eng := engine.New(state.New(agentID),
		engine.WithIDGenerator(engine.NewSequenceGenerator(agentID+"-req")))
	StartEngine(t, eng)

	rc, err := runtime.New(runtime.Options{
		AgentID:        agentID,
		Engine:         eng,
		CAS:            cfg.cas,
		EAV:            cfg.eav,
		DNA:            cfg.dna,
		Ribosome:       cfg.ribosome,
		Pool:           cfg.pool,
		Transport:      cfg.hub.Join(agentID, cfg.handler),
		NetworkTimeout: cfg.timeout,
	})
	require.NoError(t, err)
	return rc
}

// StartEngine runs eng until the test ends.
func StartEngine(t testing.TB, eng *engine.Engine) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = eng.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-eng.Stopped()
	})
}

// InitNetwork initializes rc's network state and waits for it to apply.
func InitNetwork(t testing.TB, rc *runtime.Context) {
	t.Helper()
	rc.Engine().Dispatch(action.InitNetwork{
		DnaAddress: rc.DNA().Address(),
		AgentID:    rc.AgentID(),
		Config:     action.NetworkConfig{Transport: "memory", TimeoutMS: rc.NetworkTimeout().Milliseconds()},
	})
	fut := engine.NewFuture(rc.Engine(), func(s *state.State) engine.Poll[struct{}] {
		if s.Network().Initialized() != nil {
			return engine.Pending[struct{}]()
		}
		return engine.Ready(struct{}{})
	})
	_, err := fut.Await(Context(t))
	require.NoError(t, err)
}

// Context returns a context that is cancelled after a few seconds or when
// the test ends, so a stuck await fails the test instead of hanging it.
func Context(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Await waits until probe reports true for rc's state.
func Await(t testing.TB, rc *runtime.Context, probe func(*state.State) bool) {
	t.Helper()
	fut := engine.NewFuture(rc.Engine(), func(s *state.State) engine.Poll[struct{}] {
		if probe(s) {
			return engine.Ready(struct{}{})
		}
		return engine.Pending[struct{}]()
	})
	_, err := fut.Await(Context(t))
	require.NoError(t, err)
}
