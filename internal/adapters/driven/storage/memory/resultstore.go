package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
)

// Ensure ResultStore implements the interface.
var _ driven.ResultStore = (*ResultStore)(nil)

// ResultStore is an in-memory implementation of driven.ResultStore.
// Results are kept per project in save order.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string][]domain.MergeResult
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string][]domain.MergeResult),
	}
}

// Load returns the most recently saved result for a project.
func (s *ResultStore) Load(_ context.Context, projectID string) (*domain.MergeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.results[projectID]
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	result := cloneResult(list[len(list)-1])
	return &result, nil
}

// Save appends a result for a project.
func (s *ResultStore) Save(_ context.Context, projectID string, result *domain.MergeResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneResult(*result)
	stored.ProjectID = projectID
	s.results[projectID] = append(s.results[projectID], stored)
	return nil
}

// History returns all results for a project, newest first.
func (s *ResultStore) History(_ context.Context, projectID string) ([]domain.MergeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.results[projectID]
	out := make([]domain.MergeResult, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, cloneResult(list[i]))
	}
	return out, nil
}

// cloneResult copies the slices so callers cannot mutate stored results.
func cloneResult(r domain.MergeResult) domain.MergeResult {
	r.AmendmentSummaries = append([]domain.AmendmentSummary(nil), r.AmendmentSummaries...)
	for i := range r.AmendmentSummaries {
		r.AmendmentSummaries[i].Changes = append([]string(nil), r.AmendmentSummaries[i].Changes...)
	}
	r.ClauseChangeLog = append([]domain.ClauseChange(nil), r.ClauseChangeLog...)
	r.DocumentIncorporationLog = append([]string(nil), r.DocumentIncorporationLog...)
	return r
}
