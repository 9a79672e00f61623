// Package network performs the node's network requests. Each request opens
// a slot in state, sends a message, arms a timeout and awaits the slot; the
// reply comes back as an action dispatched by the node's message handler.
// Timeouts carry the ID of the request that armed them, so a timer left
// over from an abandoned or failed request never fails a later retry.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/network/transport"
	"github.com/roach88/nucleus/internal/runtime"
	"github.com/roach88/nucleus/internal/state"
)

// TransportName is recorded in the network config of in-process nodes.
const TransportName = "memory"

// InitNetwork records the node's DNA and agent on the network and waits
// for it to apply.
func InitNetwork(ctx context.Context, rc *runtime.Context) error {
	id, ok := rc.Engine().DispatchID(action.InitNetwork{
		DnaAddress: rc.DNA().Address(),
		AgentID:    rc.AgentID(),
		Config: action.NetworkConfig{
			Transport: TransportName,
			TimeoutMS: rc.NetworkTimeout().Milliseconds(),
		},
	})
	if !ok {
		return engine.NewStoppedError()
	}
	_, err := engine.NewFuture(rc.Engine(), func(s *state.State) engine.Poll[struct{}] {
		if s.Seq() < id {
			return engine.Pending[struct{}]()
		}
		return engine.Ready(struct{}{})
	}).Await(ctx)
	return err
}

// GetEntry asks the DHT for the entry at addr. A nil result with no error
// means a peer answered that it does not hold the entry.
func GetEntry(ctx context.Context, rc *runtime.Context, addr ir.Address) (*ir.EntryWithMeta, error) {
	id, ok := rc.Engine().DispatchID(action.GetEntry{Address: addr})
	if !ok {
		return nil, engine.NewStoppedError()
	}
	fut := engine.NewFuture(rc.Engine(), func(s *state.State) engine.Poll[*ir.EntryWithMeta] {
		if s.Seq() < id {
			return engine.Pending[*ir.EntryWithMeta]()
		}
		result, _ := s.Network().GetEntryResult(addr)
		if result == nil {
			return engine.Pending[*ir.EntryWithMeta]()
		}
		meta, err := result.Unwrap()
		if err != nil {
			return engine.Failed[*ir.EntryWithMeta](err)
		}
		return engine.Ready(meta)
	})

	// Uninitialized networks fail the slot on the spot.
	if err := settled(ctx, rc, id); err != nil {
		return nil, err
	}
	if p := fut.Poll(); !p.IsPending() {
		return p.Result()
	}

	msg := transport.GetDhtData{
		MsgID:       rc.Engine().NewRequestID(),
		DnaAddress:  rc.DNA().Address(),
		FromAgentID: rc.AgentID(),
		Address:     addr,
	}
	timeout := action.GetEntryTimeout{Address: addr, Request: id}

	slog.Debug("get entry", "address", addr, "msg_id", msg.MsgID)
	if err := rc.Transport().Send(ctx, msg); err != nil {
		rc.Engine().Dispatch(timeout)
		return nil, ir.ErrorGenericf("send get entry for %s: %v", addr, err)
	}
	return await(ctx, fut, armTimeout(rc, timeout))
}

// GetValidationPackage asks the author of header for the validation package
// of the header's entry. A nil result with no error means the author
// answered without a package.
func GetValidationPackage(ctx context.Context, rc *runtime.Context, header ir.ChainHeader) (*ir.ValidationPackage, error) {
	if len(header.Sources) == 0 {
		return nil, ir.ErrorGeneric("header has no source to ask for a validation package")
	}
	headerAddr := header.Address()

	id, ok := rc.Engine().DispatchID(action.GetValidationPackage{Header: header})
	if !ok {
		return nil, engine.NewStoppedError()
	}
	fut := engine.NewFuture(rc.Engine(), func(s *state.State) engine.Poll[*ir.ValidationPackage] {
		if s.Seq() < id {
			return engine.Pending[*ir.ValidationPackage]()
		}
		result, _ := s.Network().ValidationPackageResult(headerAddr)
		if result == nil {
			return engine.Pending[*ir.ValidationPackage]()
		}
		pkg, err := result.Unwrap()
		if err != nil {
			return engine.Failed[*ir.ValidationPackage](err)
		}
		return engine.Ready(pkg)
	})

	if err := settled(ctx, rc, id); err != nil {
		return nil, err
	}
	if p := fut.Poll(); !p.IsPending() {
		return p.Result()
	}

	msg := transport.GetValidationPackageData{
		MsgID:       rc.Engine().NewRequestID(),
		DnaAddress:  rc.DNA().Address(),
		FromAgentID: rc.AgentID(),
		ToAgentID:   header.Sources[0],
		Header:      header,
	}
	timeout := action.GetValidationPackageTimeout{HeaderAddress: headerAddr, Request: id}

	slog.Debug("get validation package", "header", headerAddr, "source", msg.ToAgentID, "msg_id", msg.MsgID)
	if err := rc.Transport().Send(ctx, msg); err != nil {
		rc.Engine().Dispatch(timeout)
		return nil, ir.ErrorGenericf("send validation package request to %s: %v", msg.ToAgentID, err)
	}
	return await(ctx, fut, armTimeout(rc, timeout))
}

// settled waits until the request action with the given id has been applied.
func settled(ctx context.Context, rc *runtime.Context, id int64) error {
	_, err := engine.NewFuture(rc.Engine(), func(s *state.State) engine.Poll[struct{}] {
		if s.Seq() < id {
			return engine.Pending[struct{}]()
		}
		return engine.Ready(struct{}{})
	}).Await(ctx)
	if err != nil {
		return fmt.Errorf("await request: %w", err)
	}
	return nil
}

// await waits for fut. The timer keeps running if the caller gives up
// first, so the slot still closes.
func await[T any](ctx context.Context, fut *engine.Future[T], timer *time.Timer) (T, error) {
	v, err := fut.Await(ctx)
	if ctx.Err() == nil {
		timer.Stop()
	}
	return v, err
}

// armTimeout dispatches timeout once the network timeout elapses. The
// reducer ignores it if the request has completed or been reopened by then.
func armTimeout(rc *runtime.Context, timeout action.Action) *time.Timer {
	return time.AfterFunc(rc.NetworkTimeout(), func() {
		rc.Engine().Dispatch(timeout)
	})
}
