package driven

import (
	"context"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

// ResultStore persists merge results. It implements the result cache contract:
// the latest saved result for a project is reused until a refresh is requested.
// Results are append-only; Save never mutates an earlier result.
type ResultStore interface {
	// Load returns the latest result for a project.
	// Returns domain.ErrNotFound if the project has no result.
	Load(ctx context.Context, projectID string) (*domain.MergeResult, error)

	// Save stores a new result that supersedes earlier ones.
	Save(ctx context.Context, projectID string, result *domain.MergeResult) error

	// History returns all results for a project, newest first.
	History(ctx context.Context, projectID string) ([]domain.MergeResult, error)
}

// ClassificationStore persists the latest classification batch per project.
type ClassificationStore interface {
	// SaveBatch replaces the stored batch for a project.
	SaveBatch(ctx context.Context, projectID string, batch *domain.ClassificationBatch) error

	// LoadBatch returns the stored batch for a project.
	// Returns domain.ErrNotFound if none exists.
	LoadBatch(ctx context.Context, projectID string) (*domain.ClassificationBatch, error)
}
