// Package transport carries node-to-node messages.
//
// The Transport contract is deliberately small: Send hands a message to the
// network and returns. Replies arrive later through the receiving node's
// Handler and are turned into actions there, never returned from Send.
package transport

import (
	"context"

	"github.com/roach88/nucleus/internal/ir"
)

// Message is one of the wire messages below.
type Message interface {
	isMessage()
}

// GetDhtData asks DHT peers for the entry at Address.
type GetDhtData struct {
	MsgID       string     `json:"msg_id"`
	DnaAddress  ir.Address `json:"dna_address"`
	FromAgentID string     `json:"from_agent_id"`
	Address     ir.Address `json:"address"`
}

// DhtData answers a GetDhtData.
type DhtData struct {
	ToAgentID string     `json:"to_agent_id"`
	Data      ir.DhtData `json:"data"`
}

// GetValidationPackageData asks the author of Header for the validation
// package of the header's entry.
type GetValidationPackageData struct {
	MsgID       string         `json:"msg_id"`
	DnaAddress  ir.Address     `json:"dna_address"`
	FromAgentID string         `json:"from_agent_id"`
	ToAgentID   string         `json:"to_agent_id"`
	Header      ir.ChainHeader `json:"header"`
}

// ValidationPackageData answers a GetValidationPackageData. A nil Package
// means the author could not build one.
type ValidationPackageData struct {
	MsgID         string                `json:"msg_id"`
	ToAgentID     string                `json:"to_agent_id"`
	HeaderAddress ir.Address            `json:"header_address"`
	Package       *ir.ValidationPackage `json:"package"`
}

func (GetDhtData) isMessage()               {}
func (DhtData) isMessage()                  {}
func (GetValidationPackageData) isMessage() {}
func (ValidationPackageData) isMessage()    {}

// Transport sends messages to other nodes.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Handler receives inbound messages for one node.
type Handler func(ctx context.Context, msg Message)
