package ir

import "encoding/json"

// CrudStatus is the lifecycle status of an entry held in the DHT.
type CrudStatus string

// CrudStatus values.
const (
	CrudLive     CrudStatus = "live"
	CrudRejected CrudStatus = "rejected"
	CrudDeleted  CrudStatus = "deleted"
	CrudModified CrudStatus = "modified"
)

// Canonical implements Canonicaler so statuses can be stored in a CAS and
// referenced from EAV triples by address.
func (s CrudStatus) Canonical() any {
	return map[string]any{"crud_status": string(s)}
}

// Address returns the content address of the status value.
func (s CrudStatus) Address() Address {
	return MustAddressOf(s)
}

// EntryWithMeta is an entry together with its DHT metadata.
type EntryWithMeta struct {
	Entry      Entry      `json:"entry"`
	CrudStatus CrudStatus `json:"crud_status"`
	CrudLink   *Address   `json:"crud_link,omitempty"`
}

// DhtData is a get-entry response. Responses are correlated by Address,
// not by MsgID. Content holds the JSON encoding of *EntryWithMeta, where
// JSON null means the responder does not hold the entry.
type DhtData struct {
	MsgID      string          `json:"msg_id"`
	DnaAddress Address         `json:"dna_address"`
	AgentID    string          `json:"agent_id"`
	Address    Address         `json:"address"`
	Content    json.RawMessage `json:"content"`
}

// NewDhtData builds a response carrying meta (nil for "not held").
func NewDhtData(msgID string, dna Address, agentID string, addr Address, meta *EntryWithMeta) (DhtData, error) {
	content, err := json.Marshal(meta)
	if err != nil {
		return DhtData{}, err
	}
	return DhtData{
		MsgID:      msgID,
		DnaAddress: dna,
		AgentID:    agentID,
		Address:    addr,
		Content:    content,
	}, nil
}

// DecodeContent parses Content into an optional EntryWithMeta.
func (d DhtData) DecodeContent() (*EntryWithMeta, error) {
	if len(d.Content) == 0 {
		return nil, nil
	}
	var meta *EntryWithMeta
	if err := json.Unmarshal(d.Content, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}
