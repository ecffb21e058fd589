package memory

import (
	"context"
	"sync"

	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore keeps the vector table blob in memory.
type IndexStore struct {
	mu      sync.RWMutex
	records []domain.VectorRecord
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{}
}

// Save replaces the stored records.
func (s *IndexStore) Save(_ context.Context, records []domain.VectorRecord) error {
	snapshot := make([]domain.VectorRecord, len(records))
	copy(snapshot, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = snapshot
	return nil
}

// Load returns a copy of the stored records.
func (s *IndexStore) Load(_ context.Context) ([]domain.VectorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.VectorRecord, len(s.records))
	copy(records, s.records)
	return records, nil
}
