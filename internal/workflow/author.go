package workflow

import (
	"context"

	"github.com/roach88/nucleus/internal/agent"
	"github.com/roach88/nucleus/internal/dht"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/nucleus"
	"github.com/roach88/nucleus/internal/runtime"
)

// AuthorEntry validates entry against the local chain and commits it.
// Publishable entries are also held in the local shard so peers can get
// them. Returns the entry address.
//
// The chain lock is held from package building to commit, so the header
// validated is the header committed.
func AuthorEntry(ctx context.Context, rc *runtime.Context, entry ir.Entry, opts ...Option) (ir.Address, error) {
	r := start(NameAuthorEntry, entry.Address(), opts)

	unlock := rc.LockChain()
	defer unlock()

	header := agent.NewChainHeader(rc.State().Agent(), entry)

	r.advance(StageAwaitingPackage)
	pkg, err := nucleus.BuildValidationPackageFor(ctx, rc, entry, header).Await(ctx)
	if err != nil {
		return "", r.fail(err)
	}

	r.advance(StageValidating)
	data := ir.ValidationData{
		Package:   pkg,
		Sources:   []string{rc.AgentID()},
		Lifecycle: ir.LifecycleChain,
		Action:    ir.ActionCreate,
	}
	if _, err := nucleus.ValidateEntry(ctx, rc, entry, data).Await(ctx); err != nil {
		return "", r.fail(err)
	}

	r.advance(StageCommitting)
	addr, err := agent.Commit(ctx, rc, entry, header)
	if err != nil {
		return "", r.fail(err)
	}
	if rc.DNA().CanPublish(entry.Type) {
		if err := dht.HoldEntry(ctx, rc, entry); err != nil {
			return "", r.fail(err)
		}
	}
	r.succeed()
	return addr, nil
}
