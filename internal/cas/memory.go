package cas

import (
	"context"
	"sync"

	"github.com/roach88/nucleus/internal/ir"
)

// MemoryStorage is a process-local Storage. Clones are not needed: share
// the pointer.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[ir.Address][]byte
}

// NewMemoryStorage creates an empty in-memory CAS.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[ir.Address][]byte{}}
}

// Fetch implements Storage. The returned slice is a copy.
func (m *MemoryStorage) Fetch(_ context.Context, addr ir.Address) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.data[addr]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), content...), true, nil
}

// Store implements Storage.
func (m *MemoryStorage) Store(_ context.Context, content []byte) (ir.Address, error) {
	addr := ir.ContentAddress(content)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[addr]; !ok {
		m.data[addr] = append([]byte(nil), content...)
	}
	return addr, nil
}
