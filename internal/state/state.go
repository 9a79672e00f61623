package state

import "github.com/roach88/nucleus/internal/action"

// State is one immutable snapshot of the whole node: network, nucleus,
// agent and DHT sub-states, plus the total-order history of applied actions.
//
// Readers hold a *State and may keep it as long as they like; the engine
// publishes a new *State for every applied action.
type State struct {
	seq     int64
	network *NetworkState
	nucleus *NucleusState
	agent   *AgentState
	dht     *DhtState
	history *history
}

// New creates the initial state for the agent with the given id.
func New(agentID string) *State {
	return &State{
		network: newNetworkState(),
		nucleus: newNucleusState(),
		agent:   newAgentState(agentID),
		dht:     newDhtState(),
	}
}

// Seq returns the ID of the last applied action wrapper (0 for the initial state).
func (s *State) Seq() int64 { return s.seq }

// Network returns the network sub-state.
func (s *State) Network() *NetworkState { return s.network }

// Nucleus returns the nucleus sub-state.
func (s *State) Nucleus() *NucleusState { return s.nucleus }

// Agent returns the agent sub-state.
func (s *State) Agent() *AgentState { return s.agent }

// Dht returns the DHT sub-state.
func (s *State) Dht() *DhtState { return s.dht }

// History returns every applied action wrapper, oldest first.
func (s *State) History() []action.Wrapper { return s.history.slice() }

// HistoryLen returns the number of applied actions.
func (s *State) HistoryLen() int {
	if s.history == nil {
		return 0
	}
	return s.history.len
}

// Reduce applies w to old and returns the next snapshot. Every sub-state
// reducer sees every action; reducers that do not handle it return their
// input unchanged.
func Reduce(old *State, w action.Wrapper) *State {
	return &State{
		seq:     w.ID,
		network: reduceNetwork(old.network, w.ID, w.Action),
		nucleus: reduceNucleus(old.nucleus, w.Action),
		agent:   reduceAgent(old.agent, w.Action),
		dht:     reduceDht(old.dht, w.Action),
		history: old.history.push(w),
	}
}
