package driving

import "github.com/custodia-labs/lexmerge/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetProvider configures the generative provider.
	SetProvider(provider domain.AIProvider, model, apiKey string) error

	// SetPrompts configures the stored prompts for classification and merging.
	SetPrompts(classify, merge domain.PromptRef) error

	// SetProjectsRoot sets the directory holding project folders.
	SetProjectsRoot(path string) error

	// Validate checks the generative configuration.
	// Returns an error wrapping domain.ErrConfiguration when the credential is missing.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
