// Package dna describes an application: its zomes, the entry types each
// zome declares, and how each entry type is shared and validated.
//
// DNA definitions are written in CUE and checked against an embedded schema
// that also supplies defaults (sharing "public", validation package "entry").
package dna

import (
	"sort"

	"github.com/roach88/nucleus/internal/ir"
)

// Sharing says whether entries of a type leave the author's chain.
type Sharing string

// Sharing values.
const (
	SharingPublic  Sharing = "public"
	SharingPrivate Sharing = "private"
)

// EntryTypeDef is one declared entry type.
type EntryTypeDef struct {
	Name              ir.EntryType
	Sharing           Sharing
	ValidationPackage ir.ValidationPackageDefinition
	Validate          string // CEL expression; empty accepts everything
	RejectReason      string // Reported when Validate evaluates to false
}

// Zome groups entry types.
type Zome struct {
	Name       string
	EntryTypes map[ir.EntryType]EntryTypeDef
}

// DNA is a loaded application definition. Immutable after loading.
type DNA struct {
	Name    string
	Version string
	Zomes   map[string]Zome
}

// ZomeForEntryType returns the zome declaring t. System types are only
// found if a zome declares them explicitly.
func (d *DNA) ZomeForEntryType(t ir.EntryType) (Zome, bool) {
	for _, name := range d.ZomeNames() {
		z := d.Zomes[name]
		if _, ok := z.EntryTypes[t]; ok {
			return z, true
		}
	}
	return Zome{}, false
}

// EntryType returns the declaration of t.
func (d *DNA) EntryType(t ir.EntryType) (EntryTypeDef, bool) {
	z, ok := d.ZomeForEntryType(t)
	if !ok {
		return EntryTypeDef{}, false
	}
	return z.EntryTypes[t], true
}

// Knows reports whether entries of type t can be validated at all:
// system types always, app types only when some zome declares them.
func (d *DNA) Knows(t ir.EntryType) bool {
	if t.IsSystem() {
		return true
	}
	_, ok := d.ZomeForEntryType(t)
	return ok
}

// CanPublish reports whether entries of type t may be shared in validation
// packages and the DHT. System types are public except the DNA entry itself;
// app types follow their declared sharing. Undeclared app types are private.
func (d *DNA) CanPublish(t ir.EntryType) bool {
	if t == ir.EntryTypeDna {
		return false
	}
	if t.IsSystem() {
		if def, ok := d.EntryType(t); ok {
			return def.Sharing != SharingPrivate
		}
		return true
	}
	def, ok := d.EntryType(t)
	return ok && def.Sharing == SharingPublic
}

// ZomeNames returns zome names in sorted order.
func (d *DNA) ZomeNames() []string {
	names := make([]string, 0, len(d.Zomes))
	for name := range d.Zomes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Canonical implements ir.Canonicaler.
func (d *DNA) Canonical() any {
	zomes := make(map[string]any, len(d.Zomes))
	for name, z := range d.Zomes {
		types := make(map[string]any, len(z.EntryTypes))
		for t, def := range z.EntryTypes {
			types[string(t)] = map[string]any{
				"sharing":            string(def.Sharing),
				"validation_package": string(def.ValidationPackage.Kind),
				"custom":             def.ValidationPackage.Custom,
				"validate":           def.Validate,
				"reject_reason":      def.RejectReason,
			}
		}
		zomes[name] = map[string]any{"entry_types": types}
	}
	return map[string]any{
		"name":    d.Name,
		"version": d.Version,
		"zomes":   zomes,
	}
}

// Address returns the content address of the definition.
func (d *DNA) Address() ir.Address {
	return ir.MustAddressOf(d)
}

// Entry returns the %dna entry that records this DNA at genesis.
func (d *DNA) Entry() (ir.Entry, error) {
	data, err := ir.Encode(d)
	if err != nil {
		return ir.Entry{}, err
	}
	return ir.NewEntry(ir.EntryTypeDna, string(data)), nil
}
