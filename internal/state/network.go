package state

import (
	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/ir"
)

// errNetworkNotInitialized is stored for requests made before InitNetwork.
const errNetworkNotInitialized = "Network not initialized"

// NetworkState tracks network identity and outstanding network requests.
//
// Request slots are keyed by the requested address. A missing key means no
// request was made; a nil *Result means the request is pending; anything
// else is terminal. Each slot also remembers the wrapper ID of the request
// that last opened it, so timeouts armed by earlier requests can be told apart.
type NetworkState struct {
	initialized        bool
	dnaAddress         ir.Address
	agentID            string
	config             action.NetworkConfig
	getEntryResults    map[ir.Address]*Result[*ir.EntryWithMeta]
	getEntryRequests   map[ir.Address]int64
	validationPackages map[ir.Address]*Result[*ir.ValidationPackage]
	packageRequests    map[ir.Address]int64
}

func newNetworkState() *NetworkState {
	return &NetworkState{
		getEntryResults:    map[ir.Address]*Result[*ir.EntryWithMeta]{},
		getEntryRequests:   map[ir.Address]int64{},
		validationPackages: map[ir.Address]*Result[*ir.ValidationPackage]{},
		packageRequests:    map[ir.Address]int64{},
	}
}

// Initialized returns nil once InitNetwork has been applied, or the error
// every request made before that point fails with.
func (n *NetworkState) Initialized() *ir.Error {
	if !n.initialized {
		return ir.ErrorGeneric(errNetworkNotInitialized)
	}
	return nil
}

// DnaAddress returns the DNA address the node announced on the network.
func (n *NetworkState) DnaAddress() ir.Address { return n.dnaAddress }

// AgentID returns the agent id the node announced on the network.
func (n *NetworkState) AgentID() string { return n.agentID }

// Config returns the network configuration.
func (n *NetworkState) Config() action.NetworkConfig { return n.config }

// GetEntryResult returns the slot for a get-entry request. requested is
// false if no request was ever made for addr; otherwise a nil result means
// the request is still pending.
func (n *NetworkState) GetEntryResult(addr ir.Address) (result *Result[*ir.EntryWithMeta], requested bool) {
	result, requested = n.getEntryResults[addr]
	return result, requested
}

// ValidationPackageResult returns the slot for a validation package request,
// keyed by header address. A terminal result with a nil Value means the
// source could not provide a package.
func (n *NetworkState) ValidationPackageResult(headerAddr ir.Address) (result *Result[*ir.ValidationPackage], requested bool) {
	result, requested = n.validationPackages[headerAddr]
	return result, requested
}

// timeoutApplies reports whether a timeout armed by request applies to a
// slot last opened by current. Untagged timeouts apply to any request.
func timeoutApplies(request, current int64) bool {
	return request == 0 || request == current
}

func reduceNetwork(n *NetworkState, id int64, a action.Action) *NetworkState {
	switch a := a.(type) {
	case action.InitNetwork:
		next := *n
		next.initialized = true
		next.dnaAddress = a.DnaAddress
		next.agentID = a.AgentID
		next.config = a.Config
		return &next

	case action.GetEntry:
		// A fresh request reopens the slot. Before InitNetwork it fails at once.
		var slot *Result[*ir.EntryWithMeta]
		if err := n.Initialized(); err != nil {
			slot = Fail[*ir.EntryWithMeta](err)
		}
		next := *n
		next.getEntryResults = copyWith(n.getEntryResults, a.Address, slot)
		next.getEntryRequests = copyWith(n.getEntryRequests, a.Address, id)
		return &next

	case action.GetEntryTimeout:
		if slot, ok := n.getEntryResults[a.Address]; !ok || slot != nil {
			return n
		}
		if !timeoutApplies(a.Request, n.getEntryRequests[a.Address]) {
			return n
		}
		next := *n
		next.getEntryResults = copyWith(n.getEntryResults, a.Address, Fail[*ir.EntryWithMeta](ir.ErrTimeout()))
		return &next

	case action.HandleGetResult:
		// Only a pending slot takes a response. A response that arrives
		// after the timeout is dropped; the caller already saw the timeout.
		if slot, ok := n.getEntryResults[a.Data.Address]; !ok || slot != nil {
			return n
		}
		result := decodeGetResult(a.Data)
		next := *n
		next.getEntryResults = copyWith(n.getEntryResults, a.Data.Address, result)
		return &next

	case action.GetValidationPackage:
		var slot *Result[*ir.ValidationPackage]
		if err := n.Initialized(); err != nil {
			slot = Fail[*ir.ValidationPackage](err)
		}
		key := a.Header.Address()
		next := *n
		next.validationPackages = copyWith(n.validationPackages, key, slot)
		next.packageRequests = copyWith(n.packageRequests, key, id)
		return &next

	case action.GetValidationPackageTimeout:
		if slot, ok := n.validationPackages[a.HeaderAddress]; !ok || slot != nil {
			return n
		}
		if !timeoutApplies(a.Request, n.packageRequests[a.HeaderAddress]) {
			return n
		}
		next := *n
		next.validationPackages = copyWith(n.validationPackages, a.HeaderAddress, Fail[*ir.ValidationPackage](ir.ErrTimeout()))
		return &next

	case action.HandleGetValidationPackage:
		if slot, ok := n.validationPackages[a.HeaderAddress]; !ok || slot != nil {
			return n
		}
		next := *n
		next.validationPackages = copyWith(n.validationPackages, a.HeaderAddress, Ok(a.Package))
		return &next
	}
	return n
}

func decodeGetResult(data ir.DhtData) *Result[*ir.EntryWithMeta] {
	meta, err := data.DecodeContent()
	if err != nil {
		return Fail[*ir.EntryWithMeta](ir.ErrorGenericf("could not decode get result for %s: %v", data.Address, err))
	}
	return Ok(meta)
}
