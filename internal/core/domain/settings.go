package domain

import "strings"

const unknownDescription = "Unknown"

// AIProvider identifies a generative service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is the OpenAI Responses API (stored prompts, continuation by response id).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is Google Gemini via the genai SDK.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGemini:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI Responses (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// placeholderKeys are values shipped in sample configs that are never real credentials.
var placeholderKeys = []string{
	"changeme",
	"change-me",
	"your-api-key",
	"your_api_key",
	"sk-...",
	"<api-key>",
	"xxx",
	"todo",
}

// IsPlaceholderKey reports whether key is empty or an obvious placeholder.
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return true
	}
	for _, p := range placeholderKeys {
		if k == p {
			return true
		}
	}
	return false
}

// PromptRef identifies a stored prompt on the generative service.
type PromptRef struct {
	ID      string
	Version string
}

// GenerationSettings holds generative service configuration.
type GenerationSettings struct {
	// Provider is the generative service provider.
	Provider AIProvider

	// Model is the model name. Optional for stored prompts.
	Model string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// APIKey is the service credential.
	APIKey string

	// MaxOutputTokens caps each physical call.
	MaxOutputTokens int

	// MaxRetries bounds continuation calls per logical request.
	MaxRetries int

	// TimeoutSeconds bounds each physical HTTP call.
	TimeoutSeconds int

	// RequestsPerSecond rate limits calls to the service. Zero disables limiting.
	RequestsPerSecond float64

	// ClassifyPrompt is the stored prompt used for classification.
	ClassifyPrompt PromptRef

	// MergePrompt is the stored prompt used for merging.
	MergePrompt PromptRef
}

// IsConfigured returns true if the provider is set up with a real credential.
func (g GenerationSettings) IsConfigured() bool {
	return g.Provider.IsValid() && !IsPlaceholderKey(g.APIKey)
}

// AnalysisSettings holds orchestration configuration.
type AnalysisSettings struct {
	// ProjectsRoot is the directory holding one sub-directory per project.
	ProjectsRoot string

	// Concurrency bounds how many projects are analysed at once.
	Concurrency int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Generation GenerationSettings
	Analysis   AnalysisSettings
}

// Defaults for generation behaviour.
const (
	DefaultMaxRetries      = 10
	DefaultMaxOutputTokens = 16000
	DefaultTimeoutSeconds  = 120
	DefaultConcurrency     = 2
)

// DefaultAppSettings returns settings with sensible defaults.
// The API key is left empty; users must configure it explicitly.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Generation: GenerationSettings{
			Provider:          AIProviderOpenAI,
			MaxOutputTokens:   DefaultMaxOutputTokens,
			MaxRetries:        DefaultMaxRetries,
			TimeoutSeconds:    DefaultTimeoutSeconds,
			RequestsPerSecond: 2,
		},
		Analysis: AnalysisSettings{
			Concurrency: DefaultConcurrency,
		},
	}
}

// AllProviders returns all supported generative providers.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// DefaultModels returns default models for each provider.
func DefaultModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI: "gpt-4.1",
		AIProviderGemini: "gemini-2.5-pro",
	}
}
