// Package nucleus builds validation packages and runs application
// validation. Both run on the worker pool and report back through actions,
// so callers get engine futures keyed by request id.
package nucleus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/agent"
	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/ribosome"
	"github.com/roach88/nucleus/internal/runtime"
	"github.com/roach88/nucleus/internal/state"
)

// BuildValidationPackage assembles the evidence a validator needs for
// entry, as the entry type's definition asks.
//
// The header is the entry's header on the local chain, or a provisional
// one on top of the chain if the entry is not committed yet. Chain entries
// and headers are restricted to publishable entry types, newest first.
func BuildValidationPackage(ctx context.Context, rc *runtime.Context, entry ir.Entry) *engine.Future[ir.ValidationPackage] {
	if !rc.DNA().Knows(entry.Type) {
		return unknownEntryType(entry)
	}
	header, found, err := agent.HeaderForEntry(ctx, rc, entry.Address())
	if err != nil {
		return engine.Completed(engine.Failed[ir.ValidationPackage](ir.AsError(err)))
	}
	if !found {
		header = agent.NewChainHeader(rc.State().Agent(), entry)
	}
	return BuildValidationPackageFor(ctx, rc, entry, header)
}

// BuildValidationPackageFor is BuildValidationPackage against a header the
// caller already chose, e.g. the provisional header an author is about to
// commit. header must belong to entry.
func BuildValidationPackageFor(ctx context.Context, rc *runtime.Context, entry ir.Entry, header ir.ChainHeader) *engine.Future[ir.ValidationPackage] {
	if !rc.DNA().Knows(entry.Type) {
		return unknownEntryType(entry)
	}
	if header.EntryAddress != entry.Address() || header.EntryType != entry.Type {
		return engine.Completed(engine.Failed[ir.ValidationPackage](
			ir.ErrorGenericf("header %s does not belong to entry %s", header.Address(), entry.Address())))
	}

	requestID := rc.Engine().NewRequestID()
	fut := engine.NewFuture(rc.Engine(), func(s *state.State) engine.Poll[ir.ValidationPackage] {
		result := s.Nucleus().ValidationPackageResult(requestID)
		if result == nil {
			return engine.Pending[ir.ValidationPackage]()
		}
		pkg, err := result.Unwrap()
		if err != nil {
			return engine.Failed[ir.ValidationPackage](err)
		}
		return engine.Ready(pkg)
	}).OnLatch(func(engine.Poll[ir.ValidationPackage]) {
		rc.Engine().Dispatch(action.ForgetValidation{RequestID: requestID})
	})

	slog.Debug("building validation package",
		"request_id", requestID,
		"entry_type", entry.Type,
		"header_seq", header.Seq,
	)
	err := rc.Pool().Submit(ctx, func(jobCtx context.Context) {
		pkg, err := assemble(jobCtx, rc, header)
		rc.Engine().Dispatch(action.ReturnValidationPackage{
			RequestID: requestID,
			Package:   pkg,
			Err:       ir.AsError(err),
		})
	})
	if err != nil {
		rc.Engine().Dispatch(action.ReturnValidationPackage{RequestID: requestID, Err: ir.AsError(err)})
	}
	return fut
}

func unknownEntryType(entry ir.Entry) *engine.Future[ir.ValidationPackage] {
	return engine.Completed(engine.Failed[ir.ValidationPackage](
		ir.ValidationFailed(fmt.Sprintf("Unknown entry type: '%s'", entry.Type))))
}

func assemble(ctx context.Context, rc *runtime.Context, header ir.ChainHeader) (ir.ValidationPackage, error) {
	def, err := rc.Ribosome().ValidationPackageDefinition(ctx, header.EntryType)
	if errors.Is(err, ribosome.ErrNotImplemented) {
		return ir.ValidationPackage{}, ir.ErrorGenericf("ValidationPackage callback not implemented for %s", header.EntryType)
	}
	if err != nil {
		return ir.ValidationPackage{}, ir.ErrorGeneric(err.Error())
	}

	pkg := ir.OnlyHeader(header)
	switch def.Kind {
	case ir.DefinitionEntry:
	case ir.DefinitionChainEntries:
		_, pkg.SourceChainEntries, err = publishedChain(ctx, rc, false, true)
	case ir.DefinitionChainHeaders:
		pkg.SourceChainHeaders, _, err = publishedChain(ctx, rc, true, false)
	case ir.DefinitionChainFull:
		pkg.SourceChainHeaders, pkg.SourceChainEntries, err = publishedChain(ctx, rc, true, true)
	case ir.DefinitionCustom:
		custom := def.Custom
		pkg.Custom = &custom
	default:
		err = ir.ErrorGenericf("unknown validation package definition %q", def.Kind)
	}
	if err != nil {
		return ir.ValidationPackage{}, err
	}
	return pkg, nil
}

// publishedChain collects the publishable part of the local chain, newest
// first. Requested slices are non-nil even when empty.
func publishedChain(ctx context.Context, rc *runtime.Context, wantHeaders, wantEntries bool) ([]ir.ChainHeader, []ir.Entry, error) {
	var (
		headers []ir.ChainHeader
		entries []ir.Entry
		fetch   error
	)
	if wantHeaders {
		headers = []ir.ChainHeader{}
	}
	if wantEntries {
		entries = []ir.Entry{}
	}

	err := agent.Walk(ctx, rc.CAS(), rc.State().Agent(), func(h ir.ChainHeader) bool {
		if !rc.DNA().CanPublish(h.EntryType) {
			return true
		}
		if wantHeaders {
			headers = append(headers, h)
		}
		if !wantEntries {
			return true
		}
		e, found, err := cas.FetchEntry(ctx, rc.CAS(), h.EntryAddress)
		switch {
		case err != nil:
			fetch = fmt.Errorf("fetch entry %s: %w", h.EntryAddress, err)
			return false
		case !found:
			fetch = ir.ErrorGenericf("entry %s of header %s missing from CAS", h.EntryAddress, h.Address())
			return false
		}
		entries = append(entries, e)
		return true
	})
	if err == nil {
		err = fetch
	}
	if err != nil {
		return nil, nil, err
	}
	return headers, entries, nil
}
