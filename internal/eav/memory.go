package eav

import (
	"context"
	"sync"
)

type memoryData struct {
	mu  sync.RWMutex
	set Set
}

// MemoryStorage is a process-local Storage. Reads run concurrently; writes
// are exclusive. Clones share the same data.
type MemoryStorage struct {
	data *memoryData
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: &memoryData{set: Set{}}}
}

// Add implements Storage.
func (m *MemoryStorage) Add(_ context.Context, t EntityAttributeValue) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	m.data.set.Add(t)
	return nil
}

// Fetch implements Storage.
func (m *MemoryStorage) Fetch(_ context.Context, q Query) (Set, error) {
	m.data.mu.RLock()
	defer m.data.mu.RUnlock()

	out := Set{}
	for t := range m.data.set {
		if q.Matches(t) {
			out.Add(t)
		}
	}
	return out, nil
}

// Clone implements Storage.
func (m *MemoryStorage) Clone() Storage {
	return &MemoryStorage{data: m.data}
}
