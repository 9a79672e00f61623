package ir

import "fmt"

// DefinitionKind selects which evidence a validator needs for an entry type.
type DefinitionKind string

// DefinitionKind values.
const (
	DefinitionEntry        DefinitionKind = "entry"
	DefinitionChainEntries DefinitionKind = "chain_entries"
	DefinitionChainHeaders DefinitionKind = "chain_headers"
	DefinitionChainFull    DefinitionKind = "chain_full"
	DefinitionCustom       DefinitionKind = "custom"
)

// ValidationPackageDefinition is what an application declares per entry type.
// Custom is only meaningful when Kind is DefinitionCustom.
type ValidationPackageDefinition struct {
	Kind   DefinitionKind `json:"kind"`
	Custom string         `json:"custom,omitempty"`
}

// CustomDefinition creates a definition carrying an opaque payload.
func CustomDefinition(payload string) ValidationPackageDefinition {
	return ValidationPackageDefinition{Kind: DefinitionCustom, Custom: payload}
}

// Valid reports whether Kind is one of the known variants.
func (d ValidationPackageDefinition) Valid() error {
	switch d.Kind {
	case DefinitionEntry, DefinitionChainEntries, DefinitionChainHeaders, DefinitionChainFull, DefinitionCustom:
		return nil
	default:
		return fmt.Errorf("unknown validation package definition %q", d.Kind)
	}
}

// ValidationPackage is the evidence bundle a validator needs to judge an
// entry. ChainHeader is always set by the builder. A nil slice means the
// field was not requested; a non-nil empty slice means it was requested and
// the chain had nothing publishable.
type ValidationPackage struct {
	ChainHeader        *ChainHeader  `json:"chain_header"`
	SourceChainEntries []Entry       `json:"source_chain_entries"`
	SourceChainHeaders []ChainHeader `json:"source_chain_headers"`
	Custom             *string       `json:"custom"`
}

// OnlyHeader creates a package carrying just the entry's header.
func OnlyHeader(header ChainHeader) ValidationPackage {
	return ValidationPackage{ChainHeader: &header}
}

// EntryLifecycle says at which point an entry is being validated.
type EntryLifecycle string

// EntryLifecycle values.
const (
	LifecycleChain EntryLifecycle = "chain" // Authoring, before commit
	LifecycleDht   EntryLifecycle = "dht"   // Holding an entry
	LifecycleMeta  EntryLifecycle = "meta"  // Holding metadata such as links
)

// EntryAction is the kind of change being validated.
type EntryAction string

// EntryAction values.
const (
	ActionCreate EntryAction = "create"
	ActionModify EntryAction = "modify"
	ActionDelete EntryAction = "delete"
)

// ValidationData is everything application validation receives besides the entry.
type ValidationData struct {
	Package   ValidationPackage `json:"package"`
	Sources   []string          `json:"sources"`
	Lifecycle EntryLifecycle    `json:"lifecycle"`
	Action    EntryAction       `json:"action"`
}
