package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyProvider          = "generation.provider"
	KeyModel             = "generation.model"
	KeyBaseURL           = "generation.base_url"
	KeyAPIKey            = "generation.api_key"
	KeyMaxOutputTokens   = "generation.max_output_tokens"
	KeyMaxRetries        = "generation.max_retries"
	KeyTimeoutSeconds    = "generation.timeout_seconds"
	KeyRequestsPerSecond = "generation.requests_per_second"
	KeyClassifyPromptID  = "prompts.classify.id"
	KeyClassifyPromptVer = "prompts.classify.version"
	KeyMergePromptID     = "prompts.merge.id"
	KeyMergePromptVer    = "prompts.merge.version"
	KeyProjectsRoot      = "projects.root"
	KeyConcurrency       = "analysis.concurrency"
)

// Environment variables that override the stored API key, in precedence order.
const (
	EnvAPIKey       = "LEXMERGE_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.GenerationValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The validator is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, validator driven.GenerationValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup used for API key overrides.
func (s *SettingsService) SetEnvLookup(getenv func(string) string) {
	if getenv != nil {
		s.getenv = getenv
	}
}

// Get retrieves current application settings.
// Environment variables override the stored API key.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Generation: domain.GenerationSettings{
			Provider:          s.getProvider(defaults.Generation.Provider),
			Model:             s.configStore.GetString(KeyModel),
			BaseURL:           s.configStore.GetString(KeyBaseURL), // Empty selects the provider default
			APIKey:            s.configStore.GetString(KeyAPIKey),
			MaxOutputTokens:   s.getInt(KeyMaxOutputTokens, defaults.Generation.MaxOutputTokens),
			MaxRetries:        s.getInt(KeyMaxRetries, defaults.Generation.MaxRetries),
			TimeoutSeconds:    s.getInt(KeyTimeoutSeconds, defaults.Generation.TimeoutSeconds),
			RequestsPerSecond: s.getFloat(KeyRequestsPerSecond, defaults.Generation.RequestsPerSecond),
			ClassifyPrompt: domain.PromptRef{
				ID:      s.configStore.GetString(KeyClassifyPromptID),
				Version: s.configStore.GetString(KeyClassifyPromptVer),
			},
			MergePrompt: domain.PromptRef{
				ID:      s.configStore.GetString(KeyMergePromptID),
				Version: s.configStore.GetString(KeyMergePromptVer),
			},
		},
		Analysis: domain.AnalysisSettings{
			ProjectsRoot: s.getString(KeyProjectsRoot, defaults.Analysis.ProjectsRoot),
			Concurrency:  s.getInt(KeyConcurrency, defaults.Analysis.Concurrency),
		},
	}

	if settings.Generation.Model == "" {
		settings.Generation.Model = domain.DefaultModels()[settings.Generation.Provider]
	}
	if key := s.envAPIKey(settings.Generation.Provider); key != "" {
		settings.Generation.APIKey = key
	}

	return settings, nil
}

// Save persists application settings.
// An empty API key leaves the stored key unchanged.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	g := settings.Generation
	values := []struct {
		key   string
		value any
	}{
		{KeyProvider, g.Provider.String()},
		{KeyModel, g.Model},
		{KeyBaseURL, g.BaseURL},
		{KeyMaxOutputTokens, g.MaxOutputTokens},
		{KeyMaxRetries, g.MaxRetries},
		{KeyTimeoutSeconds, g.TimeoutSeconds},
		{KeyRequestsPerSecond, g.RequestsPerSecond},
		{KeyClassifyPromptID, g.ClassifyPrompt.ID},
		{KeyClassifyPromptVer, g.ClassifyPrompt.Version},
		{KeyMergePromptID, g.MergePrompt.ID},
		{KeyMergePromptVer, g.MergePrompt.Version},
		{KeyProjectsRoot, settings.Analysis.ProjectsRoot},
		{KeyConcurrency, settings.Analysis.Concurrency},
	}
	if g.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{KeyAPIKey, g.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetProvider configures the generative provider.
// An empty model selects the provider default.
func (s *SettingsService) SetProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid provider: %s", domain.ErrInvalidInput, provider)
	}
	if domain.IsPlaceholderKey(apiKey) {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Generation.Provider = provider
	settings.Generation.Model = model
	if model == "" {
		settings.Generation.Model = domain.DefaultModels()[provider]
	}
	settings.Generation.APIKey = apiKey

	if s.validator != nil {
		if err := s.validator.ValidateGeneration(&settings.Generation); err != nil {
			return err
		}
	}

	return s.Save(settings)
}

// SetPrompts configures the stored prompts for classification and merging.
func (s *SettingsService) SetPrompts(classify, merge domain.PromptRef) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Generation.ClassifyPrompt = classify
	settings.Generation.MergePrompt = merge
	return s.save(settings)
}

// SetProjectsRoot sets the directory holding project folders.
func (s *SettingsService) SetProjectsRoot(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%w: projects root is required", domain.ErrInvalidInput)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Analysis.ProjectsRoot = path
	return s.save(settings)
}

// Validate checks the generative configuration.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	g := settings.Generation
	if !g.Provider.IsValid() {
		return fmt.Errorf("%w: invalid provider: %s", domain.ErrConfiguration, g.Provider)
	}
	if !g.IsConfigured() {
		return fmt.Errorf("%w: no API key configured for %s (set %s or run 'lexmerge settings set')",
			domain.ErrConfiguration, g.Provider, EnvAPIKey)
	}
	if g.MaxRetries < 0 || g.MaxOutputTokens < 0 || g.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: generation limits must not be negative", domain.ErrConfiguration)
	}
	if s.validator != nil {
		return s.validator.ValidateGeneration(&g)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// save persists settings without writing an environment-provided key to disk.
func (s *SettingsService) save(settings *domain.AppSettings) error {
	if s.envAPIKey(settings.Generation.Provider) != "" {
		settings.Generation.APIKey = ""
	}
	return s.Save(settings)
}

// envAPIKey returns the API key from the environment, if any.
func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	if key := s.getenv(EnvAPIKey); key != "" {
		return key
	}
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIAPIKey)
	case domain.AIProviderGemini:
		return s.getenv(EnvGeminiAPIKey)
	default:
		return ""
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(KeyProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(strings.ToLower(val))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
