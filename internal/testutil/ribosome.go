package testutil

import (
	"context"
	"sync"

	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/ribosome"
)

// ScriptedRibosome answers ribosome callbacks from tables set up by the
// test. Types missing from Definitions report ribosome.ErrNotImplemented;
// types missing from Verdicts are valid.
type ScriptedRibosome struct {
	Definitions    map[ir.EntryType]ir.ValidationPackageDefinition
	DefinitionErrs map[ir.EntryType]error
	Verdicts       map[ir.EntryType]error

	// Gate, when set, holds every ValidationPackageDefinition call until
	// it is closed or the call's ctx is done.
	Gate chan struct{}

	mu          sync.Mutex
	validations []ValidateCall
}

// ValidateCall records one ValidateEntry invocation.
type ValidateCall struct {
	Entry ir.Entry
	Data  ir.ValidationData
}

var _ ribosome.Ribosome = (*ScriptedRibosome)(nil)

// ValidationPackageDefinition implements ribosome.Ribosome.
func (r *ScriptedRibosome) ValidationPackageDefinition(ctx context.Context, t ir.EntryType) (ir.ValidationPackageDefinition, error) {
	if r.Gate != nil {
		select {
		case <-r.Gate:
		case <-ctx.Done():
			return ir.ValidationPackageDefinition{}, ctx.Err()
		}
	}
	if err, ok := r.DefinitionErrs[t]; ok {
		return ir.ValidationPackageDefinition{}, err
	}
	def, ok := r.Definitions[t]
	if !ok {
		return ir.ValidationPackageDefinition{}, ribosome.ErrNotImplemented
	}
	return def, nil
}

// ValidateEntry implements ribosome.Ribosome.
func (r *ScriptedRibosome) ValidateEntry(_ context.Context, entry ir.Entry, data ir.ValidationData) error {
	r.mu.Lock()
	r.validations = append(r.validations, ValidateCall{Entry: entry, Data: data})
	r.mu.Unlock()
	return r.Verdicts[entry.Type]
}

// Validations returns the ValidateEntry calls seen so far.
func (r *ScriptedRibosome) Validations() []ValidateCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ValidateCall(nil), r.validations...)
}
