// Package node wires a running node: engine, storage, ribosome, worker
// pool and the handler that answers other nodes over the transport.
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/agent"
	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/dna"
	"github.com/roach88/nucleus/internal/eav"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/network"
	"github.com/roach88/nucleus/internal/network/transport"
	"github.com/roach88/nucleus/internal/ribosome"
	"github.com/roach88/nucleus/internal/runtime"
	"github.com/roach88/nucleus/internal/state"
)

// Options configures a Node. AgentID, DNA, CAS, EAV and Hub are required.
type Options struct {
	AgentID string
	DNA     *dna.DNA
	CAS     cas.Storage
	EAV     eav.Storage
	Hub     *transport.Hub

	// Ribosome defaults to the DNA's CEL rules.
	Ribosome ribosome.Ribosome

	PoolSize       int
	PoolMode       engine.PoolMode
	NetworkTimeout time.Duration

	// RequestRate caps requests answered per second for each peer; zero
	// means unlimited. RequestBurst defaults to 1.
	RequestRate  float64
	RequestBurst int

	// History, when set, is replayed before the engine starts.
	History   []action.Wrapper
	ActionLog engine.ActionLog
	Metrics   *engine.Metrics
	IDs       engine.IDGenerator
}

// Node is one agent running one DNA.
type Node struct {
	rc      *runtime.Context
	hub     *transport.Hub
	limiter *peerLimiter

	mu       sync.Mutex
	endpoint *transport.Endpoint
	cancel   context.CancelFunc
}

// New builds a stopped node.
func New(opts Options) (*Node, error) {
	if opts.Hub == nil {
		return nil, errors.New("hub is required")
	}
	if opts.DNA == nil {
		return nil, errors.New("dna is required")
	}

	rib := opts.Ribosome
	if rib == nil {
		cel, err := ribosome.NewCEL(opts.DNA)
		if err != nil {
			return nil, fmt.Errorf("compile validation rules: %w", err)
		}
		rib = cel
	}

	engineOpts := []engine.Option{engine.WithMetrics(opts.Metrics)}
	if opts.ActionLog != nil {
		engineOpts = append(engineOpts, engine.WithActionLog(opts.ActionLog))
	}
	if opts.IDs != nil {
		engineOpts = append(engineOpts, engine.WithIDGenerator(opts.IDs))
	}
	eng, err := engine.Restore(state.New(opts.AgentID), opts.History, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("restore state: %w", err)
	}

	rc, err := runtime.New(runtime.Options{
		AgentID:        opts.AgentID,
		Engine:         eng,
		CAS:            opts.CAS,
		EAV:            opts.EAV,
		DNA:            opts.DNA,
		Ribosome:       rib,
		Pool:           engine.NewPool(opts.PoolSize, opts.PoolMode, opts.Metrics),
		Transport:      opts.Hub.Endpoint(opts.AgentID),
		NetworkTimeout: opts.NetworkTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &Node{
		rc:      rc,
		hub:     opts.Hub,
		limiter: newPeerLimiter(opts.RequestRate, opts.RequestBurst),
	}, nil
}

// Context returns the node's runtime context.
func (n *Node) Context() *runtime.Context {
	return n.rc
}

// Start runs the engine, joins the hub, initializes the network and DNA,
// and writes genesis entries on an empty chain.
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	if n.cancel != nil {
		n.mu.Unlock()
		return errors.New("node already started")
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	n.cancel = cancel
	n.mu.Unlock()

	eng := n.rc.Engine()
	go func() {
		if err := eng.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("engine stopped with error", "agent_id", n.rc.AgentID(), "error", err)
		}
	}()

	if err := network.InitNetwork(ctx, n.rc); err != nil {
		return fmt.Errorf("init network: %w", err)
	}
	if !eng.Dispatch(action.InitDNA{Address: n.rc.DNA().Address()}) {
		return engine.NewStoppedError()
	}
	if err := agent.Genesis(ctx, n.rc); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}

	n.mu.Lock()
	n.endpoint = n.hub.Join(n.rc.AgentID(), n.handle)
	n.mu.Unlock()

	slog.Info("node started",
		"agent_id", n.rc.AgentID(),
		"dna", n.rc.DNA().Name,
		"dna_address", n.rc.DNA().Address(),
		"seq", eng.State().Seq(),
	)
	return nil
}

// Stop leaves the hub, drains the engine and waits for pool jobs.
func (n *Node) Stop() {
	n.mu.Lock()
	endpoint, cancel := n.endpoint, n.cancel
	n.endpoint, n.cancel = nil, nil
	n.mu.Unlock()
	if cancel == nil {
		return
	}

	if endpoint != nil {
		endpoint.Close()
	}
	eng := n.rc.Engine()
	eng.Stop()
	<-eng.Stopped()
	n.rc.Pool().Wait()
	cancel()
	slog.Info("node stopped", "agent_id", n.rc.AgentID(), "seq", eng.State().Seq())
}
