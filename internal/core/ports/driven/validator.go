package driven

import "github.com/custodia-labs/lexmerge/internal/core/domain"

// GenerationValidator checks a generation configuration before it is saved.
type GenerationValidator interface {
	// ValidateGeneration returns an error wrapping domain.ErrConfiguration
	// when the settings cannot produce a working generation service.
	ValidateGeneration(settings *domain.GenerationSettings) error
}
