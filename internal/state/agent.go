package state

import (
	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/ir"
)

// AgentState tracks the local source chain: its top header, the latest
// header per entry type and the outcome of every commit.
type AgentState struct {
	agentID    string
	top        *ir.ChainHeader
	topAddress ir.Address
	topByType  map[ir.EntryType]ir.Address
	commits    map[ir.Address]*Result[ir.Address]
}

func newAgentState(agentID string) *AgentState {
	return &AgentState{
		agentID:   agentID,
		topByType: map[ir.EntryType]ir.Address{},
		commits:   map[ir.Address]*Result[ir.Address]{},
	}
}

// AgentID returns the id of the local agent.
func (a *AgentState) AgentID() string { return a.agentID }

// Top returns the newest header on the chain. ok is false for an empty chain.
// The returned header shares its Sources slice with the snapshot and must
// not be modified.
func (a *AgentState) Top() (header ir.ChainHeader, ok bool) {
	if a.top == nil {
		return ir.ChainHeader{}, false
	}
	return *a.top, true
}

// TopAddress returns the address of the newest header, or "" for an empty chain.
func (a *AgentState) TopAddress() ir.Address { return a.topAddress }

// TopOfType returns the address of the newest header of entry type t.
func (a *AgentState) TopOfType(t ir.EntryType) ir.Address { return a.topByType[t] }

// CommitResult returns the outcome of committing the header at headerAddr:
// the entry address on success. nil means no commit was applied for it.
func (a *AgentState) CommitResult(headerAddr ir.Address) *Result[ir.Address] {
	return a.commits[headerAddr]
}

func reduceAgent(s *AgentState, a action.Action) *AgentState {
	c, ok := a.(action.Commit)
	if !ok {
		return s
	}
	headerAddr := c.Header.Address()
	if _, done := s.commits[headerAddr]; done {
		return s
	}

	next := *s
	if c.Header.Link != s.topAddress {
		next.commits = copyWith(s.commits, headerAddr, Fail[ir.Address](
			ir.ErrorGenericf("chain top moved: header links %q, top is %q", c.Header.Link, s.topAddress)))
		return &next
	}
	entryAddr := c.Entry.Address()
	if c.Header.EntryAddress != entryAddr {
		next.commits = copyWith(s.commits, headerAddr, Fail[ir.Address](
			ir.ErrorGenericf("header entry address %s does not match entry %s", c.Header.EntryAddress, entryAddr)))
		return &next
	}

	header := c.Header
	next.top = &header
	next.topAddress = headerAddr
	next.topByType = copyWith(s.topByType, c.Entry.Type, headerAddr)
	next.commits = copyWith(s.commits, headerAddr, Ok(entryAddr))
	return &next
}
