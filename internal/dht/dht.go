// Package dht is the node's local DHT shard. Held content goes to the CAS,
// metadata (CRUD status, links) to the EAV store, and the fact of holding
// is recorded in state through actions.
package dht

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/eav"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/runtime"
	"github.com/roach88/nucleus/internal/state"
)

// EAV attributes written by the shard.
const (
	AttrCrudStatus = "crud-status"
	linkPrefix     = "link__"
)

// LinkAttribute returns the EAV attribute links tagged tag are stored under.
func LinkAttribute(tag string) string {
	return linkPrefix + tag
}

// HoldEntry stores entry with a live CRUD status and records it as held.
func HoldEntry(ctx context.Context, rc *runtime.Context, entry ir.Entry) error {
	addr, err := cas.StoreEntry(ctx, rc.CAS(), entry)
	if err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	status, err := cas.StoreStatus(ctx, rc.CAS(), ir.CrudLive)
	if err != nil {
		return fmt.Errorf("store crud status: %w", err)
	}
	triple, err := eav.New(addr, AttrCrudStatus, status)
	if err != nil {
		return err
	}
	if err := rc.EAV().Add(ctx, triple); err != nil {
		return fmt.Errorf("add crud status: %w", err)
	}

	slog.Debug("holding entry", "address", addr, "entry_type", entry.Type)
	return apply(ctx, rc, action.HoldEntry{Entry: entry}, func(s *state.State) bool {
		return s.Dht().HoldsEntry(addr)
	})
}

// AddLink records link in the EAV store. The base entry must already be in
// the CAS.
func AddLink(ctx context.Context, rc *runtime.Context, link ir.Link) error {
	_, found, err := rc.CAS().Fetch(ctx, link.Base)
	if err != nil {
		return fmt.Errorf("fetch link base: %w", err)
	}
	if !found {
		return ir.ErrorGeneric("Base for link not found")
	}
	triple, err := eav.New(link.Base, LinkAttribute(link.Tag), link.Target)
	if err != nil {
		return err
	}
	if err := rc.EAV().Add(ctx, triple); err != nil {
		return fmt.Errorf("add link: %w", err)
	}

	slog.Debug("holding link", "base", link.Base, "tag", link.Tag, "target", link.Target)
	return apply(ctx, rc, action.AddLink{Link: link}, func(s *state.State) bool {
		return s.Dht().HoldsLink(link)
	})
}

// GetLinks returns the targets linked from base under tag, sorted.
func GetLinks(ctx context.Context, rc *runtime.Context, base ir.Address, tag string) ([]ir.Address, error) {
	if err := eav.ValidateAttribute(LinkAttribute(tag)); err != nil {
		return nil, err
	}
	set, err := rc.EAV().Fetch(ctx, eav.Query{}.WithEntity(base).WithAttribute(LinkAttribute(tag)))
	if err != nil {
		return nil, fmt.Errorf("fetch links: %w", err)
	}
	triples := set.Sorted()
	targets := make([]ir.Address, 0, len(triples))
	for _, t := range triples {
		targets = append(targets, t.Value)
	}
	return targets, nil
}

// CrudStatus returns the CRUD status recorded for addr.
func CrudStatus(ctx context.Context, rc *runtime.Context, addr ir.Address) (ir.CrudStatus, bool, error) {
	set, err := rc.EAV().Fetch(ctx, eav.Query{}.WithEntity(addr).WithAttribute(AttrCrudStatus))
	if err != nil {
		return "", false, fmt.Errorf("fetch crud status: %w", err)
	}
	triples := set.Sorted()
	if len(triples) == 0 {
		return "", false, nil
	}
	return cas.FetchStatus(ctx, rc.CAS(), triples[0].Value)
}

// Lookup returns the held entry at addr with its metadata, or nil if the
// shard does not hold it.
func Lookup(ctx context.Context, rc *runtime.Context, addr ir.Address) (*ir.EntryWithMeta, error) {
	status, held, err := CrudStatus(ctx, rc, addr)
	if err != nil || !held {
		return nil, err
	}
	entry, found, err := cas.FetchEntry(ctx, rc.CAS(), addr)
	if err != nil {
		return nil, fmt.Errorf("fetch held entry: %w", err)
	}
	if !found {
		return nil, ir.ErrorGenericf("held entry %s missing from CAS", addr)
	}
	return &ir.EntryWithMeta{Entry: entry, CrudStatus: status}, nil
}

func apply(ctx context.Context, rc *runtime.Context, a action.Action, done func(*state.State) bool) error {
	if !rc.Engine().Dispatch(a) {
		return engine.NewStoppedError()
	}
	_, err := engine.NewFuture(rc.Engine(), func(s *state.State) engine.Poll[struct{}] {
		if !done(s) {
			return engine.Pending[struct{}]()
		}
		return engine.Ready(struct{}{})
	}).Await(ctx)
	return err
}
