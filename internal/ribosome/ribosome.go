// Package ribosome runs application callbacks: choosing the validation
// package an entry type needs and judging entries against application rules.
package ribosome

import (
	"context"
	"errors"

	"github.com/roach88/nucleus/internal/ir"
)

// ErrNotImplemented is returned by a callback the application does not define.
var ErrNotImplemented = errors.New("callback not implemented")

// Ribosome is the application callback surface the core depends on.
//
// ValidationPackageDefinition returns ErrNotImplemented when the
// application has no definition for t; any other error is a callback
// failure whose message is its reason.
//
// ValidateEntry returns nil for a valid entry and an ir.ValidationFailed
// error carrying the application's reason for a rejected one.
type Ribosome interface {
	ValidationPackageDefinition(ctx context.Context, t ir.EntryType) (ir.ValidationPackageDefinition, error)
	ValidateEntry(ctx context.Context, entry ir.Entry, data ir.ValidationData) error
}
