package ir

// ChainHeader links an entry into its author's source chain. Each header
// references its predecessor by address; the genesis header has an empty Link.
type ChainHeader struct {
	EntryType    EntryType `json:"entry_type"`
	EntryAddress Address   `json:"entry_address"`
	Sources      []string  `json:"sources"`                  // Authoring agent ids
	Link         Address   `json:"link,omitempty"`           // Previous header
	LinkSameType Address   `json:"link_same_type,omitempty"` // Previous header of the same entry type
	Seq          int64     `json:"seq"`                      // Position in the chain, genesis = 1
}

// Canonical implements Canonicaler.
func (h ChainHeader) Canonical() any {
	sources := h.Sources
	if sources == nil {
		sources = []string{}
	}
	return map[string]any{
		"entry_type":     h.EntryType,
		"entry_address":  h.EntryAddress,
		"sources":        sources,
		"link":           h.Link,
		"link_same_type": h.LinkSameType,
		"seq":            h.Seq,
	}
}

// Address returns the content address of the header.
func (h ChainHeader) Address() Address {
	return MustAddressOf(h)
}

// EntryWithHeader pairs an entry with the header that placed it on its
// author's chain. This is what a DHT node receives when asked to hold data.
type EntryWithHeader struct {
	Entry  Entry       `json:"entry"`
	Header ChainHeader `json:"header"`
}
