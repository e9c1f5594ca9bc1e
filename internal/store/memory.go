package store

import (
	"context"
	"slices"
	"sync"

	"github.com/sells-group/producer-intervals/internal/model"
)

// MemoryStore keeps records in a slice. It is the default backend.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.Record
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

// Load replaces the stored records with a copy of records.
func (s *MemoryStore) Load(_ context.Context, records []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = slices.Clone(records)
	return nil
}

// Winners returns winning records ascending by year, ties in load order.
func (s *MemoryStore) Winners(_ context.Context) ([]model.WinEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Winners(s.records), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
