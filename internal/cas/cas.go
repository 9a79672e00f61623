// Package cas is the content-addressable store contract: content goes in,
// its address comes out, and the address alone retrieves it later.
package cas

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/nucleus/internal/ir"
)

// Storage stores opaque content under its content address.
//
// Store must return ir.ContentAddress(content), so callers may predict an
// address before storing. Fetch reports found=false for unknown addresses.
type Storage interface {
	Fetch(ctx context.Context, addr ir.Address) (content []byte, found bool, err error)
	Store(ctx context.Context, content []byte) (ir.Address, error)
}

// StoreEntry stores the canonical encoding of e. The returned address
// equals e.Address().
func StoreEntry(ctx context.Context, s Storage, e ir.Entry) (ir.Address, error) {
	return storeCanonical(ctx, s, e)
}

// StoreHeader stores the canonical encoding of h. The returned address
// equals h.Address().
func StoreHeader(ctx context.Context, s Storage, h ir.ChainHeader) (ir.Address, error) {
	return storeCanonical(ctx, s, h)
}

// StoreStatus stores a CRUD status value so EAV triples can point at it.
func StoreStatus(ctx context.Context, s Storage, status ir.CrudStatus) (ir.Address, error) {
	return storeCanonical(ctx, s, status)
}

func storeCanonical(ctx context.Context, s Storage, v ir.Canonicaler) (ir.Address, error) {
	content, err := ir.Encode(v)
	if err != nil {
		return "", fmt.Errorf("encode content: %w", err)
	}
	addr, err := s.Store(ctx, content)
	if err != nil {
		return "", fmt.Errorf("store content: %w", err)
	}
	return addr, nil
}

// FetchEntry loads the entry stored at addr.
func FetchEntry(ctx context.Context, s Storage, addr ir.Address) (ir.Entry, bool, error) {
	var e ir.Entry
	found, err := fetchJSON(ctx, s, addr, &e)
	return e, found, err
}

// FetchHeader loads the chain header stored at addr.
func FetchHeader(ctx context.Context, s Storage, addr ir.Address) (ir.ChainHeader, bool, error) {
	var h ir.ChainHeader
	found, err := fetchJSON(ctx, s, addr, &h)
	return h, found, err
}

// FetchStatus loads the CRUD status stored at addr.
func FetchStatus(ctx context.Context, s Storage, addr ir.Address) (ir.CrudStatus, bool, error) {
	var wrapper struct {
		CrudStatus ir.CrudStatus `json:"crud_status"`
	}
	found, err := fetchJSON(ctx, s, addr, &wrapper)
	return wrapper.CrudStatus, found, err
}

func fetchJSON(ctx context.Context, s Storage, addr ir.Address, into any) (bool, error) {
	content, found, err := s.Fetch(ctx, addr)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(content, into); err != nil {
		return true, fmt.Errorf("decode content at %s: %w", addr, err)
	}
	return true, nil
}
