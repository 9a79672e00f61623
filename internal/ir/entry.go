package ir

import "strings"

// EntryType names the kind of an entry. App entry types are declared in the
// DNA; system types carry a leading '%'.
type EntryType string

// System entry types.
const (
	EntryTypeDna        EntryType = "%dna"
	EntryTypeAgentID    EntryType = "%agent_id"
	EntryTypeLinkAdd    EntryType = "%link_add"
	EntryTypeLinkRemove EntryType = "%link_remove"
)

// IsSystem reports whether t is a built-in entry type.
func (t EntryType) IsSystem() bool {
	return strings.HasPrefix(string(t), "%")
}

// String implements fmt.Stringer.
func (t EntryType) String() string {
	return string(t)
}

// Link is a tagged relationship from a base entry to a target entry.
type Link struct {
	Base   Address `json:"base"`
	Target Address `json:"target"`
	Tag    string  `json:"tag"`
}

// Canonical implements Canonicaler.
func (l Link) Canonical() any {
	return map[string]any{
		"base":   l.Base,
		"target": l.Target,
		"tag":    l.Tag,
	}
}

// Entry is a unit of content committed to a source chain.
//
// Entry is a tagged union over its Type: Link is set iff Type is
// EntryTypeLinkAdd or EntryTypeLinkRemove; every other type carries its
// payload in Value. Use the constructors to keep the variants consistent.
type Entry struct {
	Type  EntryType `json:"entry_type"`
	Value string    `json:"value,omitempty"`
	Link  *Link     `json:"link,omitempty"`
}

// NewEntry creates an entry carrying a value (app, agent or dna entries).
func NewEntry(t EntryType, value string) Entry {
	return Entry{Type: t, Value: value}
}

// NewLinkAddEntry creates a link-add entry.
func NewLinkAddEntry(base, target Address, tag string) Entry {
	return Entry{
		Type: EntryTypeLinkAdd,
		Link: &Link{Base: base, Target: target, Tag: tag},
	}
}

// Canonical implements Canonicaler.
func (e Entry) Canonical() any {
	obj := map[string]any{
		"entry_type": e.Type,
		"value":      e.Value,
	}
	if e.Link != nil {
		obj["link"] = e.Link.Canonical()
	}
	return obj
}

// Address returns the content address of the entry.
// Entries built from strings and addresses always canonicalize, so a failure
// here indicates a programming error.
func (e Entry) Address() Address {
	return MustAddressOf(e)
}

// LinkAdd extracts the link of a link-add entry. Any other variant yields a
// generic error naming the expected variant.
func (e Entry) LinkAdd() (Link, error) {
	if e.Type != EntryTypeLinkAdd || e.Link == nil {
		return Link{}, ErrorGenericf("expected entry of type %s, got %s", EntryTypeLinkAdd, e.Type)
	}
	return *e.Link, nil
}

// Equal reports whether two entries have identical content.
func (e Entry) Equal(other Entry) bool {
	if e.Type != other.Type || e.Value != other.Value {
		return false
	}
	if (e.Link == nil) != (other.Link == nil) {
		return false
	}
	return e.Link == nil || *e.Link == *other.Link
}
