package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
)

// Ensure ClassificationStore implements the interface.
var _ driven.ClassificationStore = (*ClassificationStore)(nil)

// ClassificationStore is an in-memory implementation of driven.ClassificationStore.
type ClassificationStore struct {
	mu      sync.RWMutex
	batches map[string]domain.ClassificationBatch
}

// NewClassificationStore creates a new in-memory classification store.
func NewClassificationStore() *ClassificationStore {
	return &ClassificationStore{
		batches: make(map[string]domain.ClassificationBatch),
	}
}

// SaveBatch replaces the batch for a project.
func (s *ClassificationStore) SaveBatch(_ context.Context, projectID string, batch *domain.ClassificationBatch) error {
	if batch == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[projectID] = cloneBatch(*batch)
	return nil
}

// LoadBatch returns the batch for a project.
func (s *ClassificationStore) LoadBatch(_ context.Context, projectID string) (*domain.ClassificationBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, ok := s.batches[projectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneBatch(batch)
	return &out, nil
}

func cloneBatch(b domain.ClassificationBatch) domain.ClassificationBatch {
	return domain.ClassificationBatch{
		Documents:          append([]domain.Document(nil), b.Documents...),
		ChronologicalOrder: append([]string(nil), b.ChronologicalOrder...),
	}
}
