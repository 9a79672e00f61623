package workflow

import (
	"context"

	"github.com/roach88/nucleus/internal/dht"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/network"
	"github.com/roach88/nucleus/internal/nucleus"
	"github.com/roach88/nucleus/internal/runtime"
)

// HoldLink validates a link-add entry authored elsewhere and, if valid,
// adds the link to the local shard. The validation package comes from the
// header's source.
func HoldLink(ctx context.Context, rc *runtime.Context, ewh ir.EntryWithHeader, opts ...Option) error {
	r := start(NameHoldLink, ewh.Entry.Address(), opts)

	link, err := ewh.Entry.LinkAdd()
	if err != nil {
		return r.fail(ir.ErrorGeneric("hold_link_workflow expects entry to be an Entry::LinkAdd"))
	}
	if err := validateFromSource(ctx, rc, r, ewh, ir.LifecycleMeta); err != nil {
		return err
	}

	r.advance(StageCommitting)
	if err := dht.AddLink(ctx, rc, link); err != nil {
		return r.fail(err)
	}
	r.succeed()
	return nil
}

// HoldEntry validates an entry authored elsewhere and, if valid, holds it
// in the local shard.
func HoldEntry(ctx context.Context, rc *runtime.Context, ewh ir.EntryWithHeader, opts ...Option) error {
	r := start(NameHoldEntry, ewh.Entry.Address(), opts)

	if err := validateFromSource(ctx, rc, r, ewh, ir.LifecycleDht); err != nil {
		return err
	}

	r.advance(StageCommitting)
	if err := dht.HoldEntry(ctx, rc, ewh.Entry); err != nil {
		return r.fail(err)
	}
	r.succeed()
	return nil
}

// validateFromSource fetches the package from the author and runs
// validation. It reports StageFailed itself.
func validateFromSource(ctx context.Context, rc *runtime.Context, r *run, ewh ir.EntryWithHeader, lifecycle ir.EntryLifecycle) error {
	if ewh.Header.EntryAddress != ewh.Entry.Address() {
		return r.fail(ir.ErrorGenericf("header is for entry %s, not %s", ewh.Header.EntryAddress, ewh.Entry.Address()))
	}

	r.advance(StageAwaitingPackage)
	pkg, err := network.GetValidationPackage(ctx, rc, ewh.Header)
	if err != nil {
		return r.fail(err)
	}
	if pkg == nil {
		return r.fail(ir.ErrorGeneric("Could not get validation package from source"))
	}

	r.advance(StageValidating)
	data := ir.ValidationData{
		Package:   *pkg,
		Sources:   ewh.Header.Sources,
		Lifecycle: lifecycle,
		Action:    ir.ActionCreate,
	}
	if _, err := nucleus.ValidateEntry(ctx, rc, ewh.Entry, data).Await(ctx); err != nil {
		return r.fail(err)
	}
	return nil
}
