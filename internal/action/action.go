package action

import (
	"encoding/json"

	"github.com/roach88/nucleus/internal/ir"
)

// Kind names an action variant. Used for logging, metrics and the action log.
type Kind string

// Kind values, one per variant.
const (
	KindInitNetwork                 Kind = "init_network"
	KindGetEntry                    Kind = "get_entry"
	KindGetEntryTimeout             Kind = "get_entry_timeout"
	KindHandleGetResult             Kind = "handle_get_result"
	KindGetValidationPackage        Kind = "get_validation_package"
	KindGetValidationPackageTimeout Kind = "get_validation_package_timeout"
	KindHandleGetValidationPackage  Kind = "handle_get_validation_package"
	KindInitDNA                     Kind = "init_dna"
	KindReturnValidationPackage     Kind = "return_validation_package"
	KindReturnValidationResult      Kind = "return_validation_result"
	KindCommit                      Kind = "commit"
	KindHoldEntry                   Kind = "hold_entry"
	KindAddLink                     Kind = "add_link"
	KindForgetValidation            Kind = "forget_validation"
)

// Known reports whether k names one of the variants above.
func (k Kind) Known() bool {
	switch k {
	case KindInitNetwork, KindGetEntry, KindGetEntryTimeout, KindHandleGetResult,
		KindGetValidationPackage, KindGetValidationPackageTimeout, KindHandleGetValidationPackage,
		KindInitDNA, KindReturnValidationPackage, KindReturnValidationResult,
		KindCommit, KindHoldEntry, KindAddLink, KindForgetValidation:
		return true
	}
	return false
}

// Action is a state transition request. Each variant carries exactly the
// data its reducer needs.
type Action interface {
	Kind() Kind
	isAction()
}

// NetworkConfig is the transport-facing part of network initialization.
type NetworkConfig struct {
	Transport string `json:"transport"`
	TimeoutMS int64  `json:"timeout_ms"`
}

// InitNetwork records the identity the node uses on the network.
type InitNetwork struct {
	DnaAddress ir.Address    `json:"dna_address"`
	AgentID    string        `json:"agent_id"`
	Config     NetworkConfig `json:"config"`
}

// GetEntry opens a get-entry request slot for Address.
type GetEntry struct {
	Address ir.Address `json:"address"`
}

// GetEntryTimeout fails the request for Address if it is still pending.
// Request is the wrapper ID of the GetEntry that armed the timeout; a
// timeout armed by an earlier request for the same address is ignored.
// Zero fails whichever request is pending.
type GetEntryTimeout struct {
	Address ir.Address `json:"address"`
	Request int64      `json:"request,omitempty"`
}

// HandleGetResult delivers a get-entry response from the network.
type HandleGetResult struct {
	Data ir.DhtData `json:"data"`
}

// GetValidationPackage opens a request slot for the validation package of
// the entry behind Header, to be answered by the header's source.
type GetValidationPackage struct {
	Header ir.ChainHeader `json:"header"`
}

// GetValidationPackageTimeout fails the request for HeaderAddress if still
// pending. Request matches GetEntryTimeout.Request.
type GetValidationPackageTimeout struct {
	HeaderAddress ir.Address `json:"header_address"`
	Request       int64      `json:"request,omitempty"`
}

// HandleGetValidationPackage delivers a validation package from the source.
// A nil Package means the source could not provide one.
type HandleGetValidationPackage struct {
	HeaderAddress ir.Address            `json:"header_address"`
	Package       *ir.ValidationPackage `json:"package"`
}

// InitDNA records the address of the DNA this node runs.
type InitDNA struct {
	Address ir.Address `json:"address"`
}

// ReturnValidationPackage delivers a locally built validation package (or
// the error that prevented building it) for request RequestID.
type ReturnValidationPackage struct {
	RequestID string               `json:"request_id"`
	Package   ir.ValidationPackage `json:"package"`
	Err       *ir.Error            `json:"error,omitempty"`
}

// ReturnValidationResult delivers the verdict of application validation for
// request RequestID. A nil Err means the entry is valid.
type ReturnValidationResult struct {
	RequestID string    `json:"request_id"`
	Err       *ir.Error `json:"error,omitempty"`
}

// Commit appends Header (already persisted along with Entry in the CAS) to
// the local source chain.
type Commit struct {
	Entry  ir.Entry       `json:"entry"`
	Header ir.ChainHeader `json:"header"`
}

// HoldEntry records that the local DHT shard holds Entry.
type HoldEntry struct {
	Entry ir.Entry `json:"entry"`
}

// AddLink records that the local DHT shard holds Link.
type AddLink struct {
	Link ir.Link `json:"link"`
}

// ForgetValidation drops the stored package and verdict for RequestID once
// the requester has taken them.
type ForgetValidation struct {
	RequestID string `json:"request_id"`
}

func (InitNetwork) Kind() Kind                 { return KindInitNetwork }
func (GetEntry) Kind() Kind                    { return KindGetEntry }
func (GetEntryTimeout) Kind() Kind             { return KindGetEntryTimeout }
func (HandleGetResult) Kind() Kind             { return KindHandleGetResult }
func (GetValidationPackage) Kind() Kind        { return KindGetValidationPackage }
func (GetValidationPackageTimeout) Kind() Kind { return KindGetValidationPackageTimeout }
func (HandleGetValidationPackage) Kind() Kind  { return KindHandleGetValidationPackage }
func (InitDNA) Kind() Kind                     { return KindInitDNA }
func (ReturnValidationPackage) Kind() Kind     { return KindReturnValidationPackage }
func (ReturnValidationResult) Kind() Kind      { return KindReturnValidationResult }
func (Commit) Kind() Kind                      { return KindCommit }
func (HoldEntry) Kind() Kind                   { return KindHoldEntry }
func (AddLink) Kind() Kind                     { return KindAddLink }
func (ForgetValidation) Kind() Kind            { return KindForgetValidation }

func (InitNetwork) isAction()                 {}
func (GetEntry) isAction()                    {}
func (GetEntryTimeout) isAction()             {}
func (HandleGetResult) isAction()             {}
func (GetValidationPackage) isAction()        {}
func (GetValidationPackageTimeout) isAction() {}
func (HandleGetValidationPackage) isAction()  {}
func (InitDNA) isAction()                     {}
func (ReturnValidationPackage) isAction()     {}
func (ReturnValidationResult) isAction()      {}
func (Commit) isAction()                      {}
func (HoldEntry) isAction()                   {}
func (AddLink) isAction()                     {}
func (ForgetValidation) isAction()            {}

// Wrapper correlates an action with the unique, monotonic ID it was
// dispatched under. Immutable once created.
type Wrapper struct {
	ID     int64
	Action Action
}

// Payload returns the JSON encoding of the wrapped action, for the action log.
func (w Wrapper) Payload() ([]byte, error) {
	return json.Marshal(w.Action)
}
