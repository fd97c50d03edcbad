package driven

import (
	"context"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

// TextSource delivers the extracted text of every document in a project.
// Extraction failures are reported per document, not as an error.
type TextSource interface {
	// Load returns one entry per project document, in a stable order.
	// Returns domain.ErrNotFound if the project does not exist.
	Load(ctx context.Context, projectID string) ([]domain.SourceText, error)

	// Projects lists the known project IDs.
	Projects(ctx context.Context) ([]string, error)
}

// ProjectWatcher notifies when a project's documents change.
type ProjectWatcher interface {
	// Watch emits after a project's files change. The channel is closed
	// when ctx is cancelled.
	Watch(ctx context.Context, projectID string) (<-chan struct{}, error)
}
