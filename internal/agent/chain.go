// Package agent manages the local source chain: walking it, finding the
// header of an entry, building the next header and committing.
package agent

import (
	"context"
	"fmt"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/runtime"
	"github.com/roach88/nucleus/internal/state"
)

// Walk visits the chain of a newest first, fetching each predecessor from
// store. fn returns false to stop early.
func Walk(ctx context.Context, store cas.Storage, a *state.AgentState, fn func(ir.ChainHeader) bool) error {
	header, ok := a.Top()
	if !ok {
		return nil
	}
	for {
		if !fn(header) {
			return nil
		}
		if header.Link == "" {
			return nil
		}
		prev, found, err := cas.FetchHeader(ctx, store, header.Link)
		if err != nil {
			return fmt.Errorf("fetch chain header %s: %w", header.Link, err)
		}
		if !found {
			return ir.ErrorGenericf("chain header %s missing from CAS", header.Link)
		}
		if prev.Seq >= header.Seq {
			return ir.ErrorGenericf("chain header %s has seq %d, successor has %d", header.Link, prev.Seq, header.Seq)
		}
		header = prev
	}
}

// Headers returns the whole local chain, newest first.
func Headers(ctx context.Context, rc *runtime.Context) ([]ir.ChainHeader, error) {
	var headers []ir.ChainHeader
	err := Walk(ctx, rc.CAS(), rc.State().Agent(), func(h ir.ChainHeader) bool {
		headers = append(headers, h)
		return true
	})
	return headers, err
}

// HeaderForEntry finds the newest header on the local chain whose entry is
// at entryAddr.
func HeaderForEntry(ctx context.Context, rc *runtime.Context, entryAddr ir.Address) (ir.ChainHeader, bool, error) {
	var (
		found  ir.ChainHeader
		exists bool
	)
	err := Walk(ctx, rc.CAS(), rc.State().Agent(), func(h ir.ChainHeader) bool {
		if h.EntryAddress == entryAddr {
			found, exists = h, true
			return false
		}
		return true
	})
	return found, exists, err
}

// OnChain reports whether the header at headerAddr is on the local chain.
func OnChain(ctx context.Context, rc *runtime.Context, headerAddr ir.Address) (bool, error) {
	var exists bool
	err := Walk(ctx, rc.CAS(), rc.State().Agent(), func(h ir.ChainHeader) bool {
		exists = h.Address() == headerAddr
		return !exists
	})
	return exists, err
}

// NewChainHeader builds the header entry would get if committed on top of
// a now. It is provisional until Commit applies it.
func NewChainHeader(a *state.AgentState, entry ir.Entry) ir.ChainHeader {
	var seq int64 = 1
	if top, ok := a.Top(); ok {
		seq = top.Seq + 1
	}
	return ir.ChainHeader{
		EntryType:    entry.Type,
		EntryAddress: entry.Address(),
		Sources:      []string{a.AgentID()},
		Link:         a.TopAddress(),
		LinkSameType: a.TopOfType(entry.Type),
		Seq:          seq,
	}
}

// Commit stores entry and header in the CAS, then appends header to the
// chain and waits for the outcome. Returns the entry address.
//
// Callers authoring concurrently must hold rc.LockChain(); otherwise a
// competing commit makes this one fail with "chain top moved".
func Commit(ctx context.Context, rc *runtime.Context, entry ir.Entry, header ir.ChainHeader) (ir.Address, error) {
	if _, err := cas.StoreEntry(ctx, rc.CAS(), entry); err != nil {
		return "", fmt.Errorf("store entry: %w", err)
	}
	headerAddr, err := cas.StoreHeader(ctx, rc.CAS(), header)
	if err != nil {
		return "", fmt.Errorf("store header: %w", err)
	}

	if !rc.Engine().Dispatch(action.Commit{Entry: entry, Header: header}) {
		return "", engine.NewStoppedError()
	}
	fut := engine.NewFuture(rc.Engine(), func(s *state.State) engine.Poll[ir.Address] {
		result := s.Agent().CommitResult(headerAddr)
		if result == nil {
			return engine.Pending[ir.Address]()
		}
		addr, err := result.Unwrap()
		if err != nil {
			return engine.Failed[ir.Address](err)
		}
		return engine.Ready(addr)
	})
	return fut.Await(ctx)
}

// Append commits entry on top of the current chain without validation.
// Only system entries written by the node itself go through here.
func Append(ctx context.Context, rc *runtime.Context, entry ir.Entry) (ir.ChainHeader, error) {
	header := NewChainHeader(rc.State().Agent(), entry)
	if _, err := Commit(ctx, rc, entry, header); err != nil {
		return ir.ChainHeader{}, err
	}
	return header, nil
}

// Genesis writes the %dna and %agent_id entries if the chain is empty.
func Genesis(ctx context.Context, rc *runtime.Context) error {
	unlock := rc.LockChain()
	defer unlock()

	if _, ok := rc.State().Agent().Top(); ok {
		return nil
	}
	dnaEntry, err := rc.DNA().Entry()
	if err != nil {
		return fmt.Errorf("encode dna entry: %w", err)
	}
	if _, err := Append(ctx, rc, dnaEntry); err != nil {
		return fmt.Errorf("commit dna entry: %w", err)
	}
	if _, err := Append(ctx, rc, ir.NewEntry(ir.EntryTypeAgentID, rc.AgentID())); err != nil {
		return fmt.Errorf("commit agent entry: %w", err)
	}
	return nil
}
