package mcp

import (
	"context"

	"github.com/custodia-labs/lexmerge/internal/core/ports/driving"
)

// ProjectLister lists the known project IDs.
type ProjectLister interface {
	Projects(ctx context.Context) ([]string, error)
}

// Ports aggregates all interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis classifies and merges projects.
	Analysis driving.AnalysisService

	// Projects lists projects for the projects resource. Optional.
	Projects ProjectLister
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
