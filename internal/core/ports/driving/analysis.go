package driving

import (
	"context"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

// AnalyzeOptions configures an analysis run.
type AnalyzeOptions struct {
	// Refresh bypasses the stored result and always re-runs the pipeline.
	Refresh bool
}

// AnalysisService classifies and merges a project's documents.
type AnalysisService interface {
	// Classify classifies the project's documents and stores the batch.
	// Never fails because of the generative service; it falls back to
	// the filename heuristic instead.
	Classify(ctx context.Context, projectID string) (*domain.ClassificationBatch, error)

	// Merge merges the project's stored classification (classifying first
	// if none exists) and stores a new result.
	// Returns domain.ErrNoUsableInput if no document has any text.
	Merge(ctx context.Context, projectID string) (*domain.MergeResult, error)

	// Analyze returns the stored result unless opts.Refresh is set,
	// otherwise classifies, merges and stores a new result.
	Analyze(ctx context.Context, projectID string, opts AnalyzeOptions) (*domain.MergeResult, error)

	// AnalyzeMany analyses independent projects concurrently.
	AnalyzeMany(ctx context.Context, projectIDs []string, opts AnalyzeOptions) (map[string]*domain.MergeResult, error)

	// Result returns the latest stored result.
	Result(ctx context.Context, projectID string) (*domain.MergeResult, error)

	// History returns all stored results, newest first.
	History(ctx context.Context, projectID string) ([]domain.MergeResult, error)
}
