package node

import (
	"context"
	"log/slog"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/agent"
	"github.com/roach88/nucleus/internal/cas"
	"github.com/roach88/nucleus/internal/dht"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/network/transport"
	"github.com/roach88/nucleus/internal/nucleus"
)

// handle receives messages from the hub. Replies to our own requests
// become actions; requests from others are answered from local storage.
func (n *Node) handle(ctx context.Context, msg transport.Message) {
	switch m := msg.(type) {
	case transport.DhtData:
		n.rc.Engine().Dispatch(action.HandleGetResult{Data: m.Data})
	case transport.ValidationPackageData:
		n.rc.Engine().Dispatch(action.HandleGetValidationPackage{
			HeaderAddress: m.HeaderAddress,
			Package:       m.Package,
		})
	case transport.GetDhtData:
		if n.admit(m.FromAgentID, "get_entry") {
			n.answerGetEntry(ctx, m)
		}
	case transport.GetValidationPackageData:
		if n.admit(m.FromAgentID, "get_validation_package") {
			n.answerValidationPackage(ctx, m)
		}
	}
}

// admit applies the per-peer request limit. Dropped requests time out on
// the requesting side.
func (n *Node) admit(from, request string) bool {
	if n.limiter.allow(from) {
		return true
	}
	slog.Warn("dropping request: peer over rate limit", "from", from, "request", request)
	return false
}

// answerGetEntry replies only if the local shard holds the entry.
func (n *Node) answerGetEntry(ctx context.Context, req transport.GetDhtData) {
	if req.DnaAddress != n.rc.DNA().Address() {
		slog.Warn("ignoring get entry for another dna", "from", req.FromAgentID, "dna_address", req.DnaAddress)
		return
	}
	meta, err := dht.Lookup(ctx, n.rc, req.Address)
	if err != nil {
		slog.Error("get entry lookup failed", "address", req.Address, "error", err)
		return
	}
	if meta == nil {
		return
	}
	data, err := ir.NewDhtData(req.MsgID, n.rc.DNA().Address(), n.rc.AgentID(), req.Address, meta)
	if err != nil {
		slog.Error("encode get entry reply failed", "address", req.Address, "error", err)
		return
	}
	n.reply(ctx, transport.DhtData{ToAgentID: req.FromAgentID, Data: data})
}

// answerValidationPackage builds the package for a header on the local
// chain. Anything else gets a reply without a package.
func (n *Node) answerValidationPackage(ctx context.Context, req transport.GetValidationPackageData) {
	reply := transport.ValidationPackageData{
		MsgID:         req.MsgID,
		ToAgentID:     req.FromAgentID,
		HeaderAddress: req.Header.Address(),
	}
	if pkg, ok := n.buildForPeer(ctx, req); ok {
		reply.Package = &pkg
	}
	n.reply(ctx, reply)
}

func (n *Node) buildForPeer(ctx context.Context, req transport.GetValidationPackageData) (ir.ValidationPackage, bool) {
	log := slog.With("from", req.FromAgentID, "header", req.Header.Address())

	if req.DnaAddress != n.rc.DNA().Address() {
		log.Warn("validation package requested for another dna")
		return ir.ValidationPackage{}, false
	}
	onChain, err := agent.OnChain(ctx, n.rc, req.Header.Address())
	if err != nil {
		log.Error("chain lookup failed", "error", err)
		return ir.ValidationPackage{}, false
	}
	if !onChain {
		log.Debug("validation package requested for header not on local chain")
		return ir.ValidationPackage{}, false
	}
	entry, found, err := cas.FetchEntry(ctx, n.rc.CAS(), req.Header.EntryAddress)
	if err != nil || !found {
		log.Error("entry of local header unavailable", "found", found, "error", err)
		return ir.ValidationPackage{}, false
	}

	pkg, err := nucleus.BuildValidationPackageFor(ctx, n.rc, entry, req.Header).Await(ctx)
	if err != nil {
		log.Warn("validation package build failed", "error", err)
		return ir.ValidationPackage{}, false
	}
	return pkg, true
}

func (n *Node) reply(ctx context.Context, msg transport.Message) {
	if err := n.rc.Transport().Send(ctx, msg); err != nil {
		slog.Warn("reply failed", "agent_id", n.rc.AgentID(), "error", err)
	}
}
