// Package runtime holds the execution context shared by node operations.
package runtime

import (
	"errors"
	"sync"
	"time"

	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/dna"
	"github.com/roach88/nucleus/internal/eav"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/network/transport"
	"github.com/roach88/nucleus/internal/ribosome"
	"github.com/roach88/nucleus/internal/state"
)

// DefaultNetworkTimeout bounds network requests when Options leaves it unset.
const DefaultNetworkTimeout = 5 * time.Second

// Options are the collaborators of a Context. Engine, CAS, EAV, DNA,
// Ribosome and Transport are required.
type Options struct {
	AgentID        string
	Engine         *engine.Engine
	CAS            cas.Storage
	EAV            eav.Storage
	DNA            *dna.DNA
	Ribosome       ribosome.Ribosome
	Pool           *engine.Pool
	Transport      transport.Transport
	NetworkTimeout time.Duration
}

// Context is passed to every operation a node performs. It is safe for
// concurrent use; all mutable state lives in the engine.
type Context struct {
	agentID        string
	engine         *engine.Engine
	cas            cas.Storage
	eav            eav.Storage
	dna            *dna.DNA
	ribosome       ribosome.Ribosome
	pool           *engine.Pool
	transport      transport.Transport
	networkTimeout time.Duration

	chainMu sync.Mutex
}

// New validates opts and builds a Context. A nil Pool gets a default
// reject-mode pool; a zero NetworkTimeout gets DefaultNetworkTimeout.
func New(opts Options) (*Context, error) {
	var errs []error
	if opts.AgentID == "" {
		errs = append(errs, errors.New("agent id is required"))
	}
	if opts.Engine == nil {
		errs = append(errs, errors.New("engine is required"))
	}
	if opts.CAS == nil {
		errs = append(errs, errors.New("cas storage is required"))
	}
	if opts.EAV == nil {
		errs = append(errs, errors.New("eav storage is required"))
	}
	if opts.DNA == nil {
		errs = append(errs, errors.New("dna is required"))
	}
	if opts.Ribosome == nil {
		errs = append(errs, errors.New("ribosome is required"))
	}
	if opts.Transport == nil {
		errs = append(errs, errors.New("transport is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	pool := opts.Pool
	if pool == nil {
		pool = engine.NewPool(engine.DefaultPoolSize, engine.PoolReject, nil)
	}
	timeout := opts.NetworkTimeout
	if timeout <= 0 {
		timeout = DefaultNetworkTimeout
	}
	return &Context{
		agentID:        opts.AgentID,
		engine:         opts.Engine,
		cas:            opts.CAS,
		eav:            opts.EAV,
		dna:            opts.DNA,
		ribosome:       opts.Ribosome,
		pool:           pool,
		transport:      opts.Transport,
		networkTimeout: timeout,
	}, nil
}

func (c *Context) AgentID() string                { return c.agentID }
func (c *Context) Engine() *engine.Engine         { return c.engine }
func (c *Context) CAS() cas.Storage               { return c.cas }
func (c *Context) EAV() eav.Storage               { return c.eav }
func (c *Context) DNA() *dna.DNA                  { return c.dna }
func (c *Context) Ribosome() ribosome.Ribosome    { return c.ribosome }
func (c *Context) Pool() *engine.Pool             { return c.pool }
func (c *Context) Transport() transport.Transport { return c.transport }
func (c *Context) NetworkTimeout() time.Duration  { return c.networkTimeout }

// State returns the engine's latest snapshot.
func (c *Context) State() *state.State {
	return c.engine.State()
}

// LockChain serializes authoring on the local source chain. The returned
// func releases the lock.
func (c *Context) LockChain() (unlock func()) {
	c.chainMu.Lock()
	return c.chainMu.Unlock
}
