// Package generation selects and validates the configured generation service.
package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/lexmerge/internal/adapters/driven/generation/gemini"
	"github.com/custodia-labs/lexmerge/internal/adapters/driven/generation/openai"
	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for connectivity validation.
const pingTimeout = 5 * time.Second

// pinger is implemented by services that can check credentials cheaply.
type pinger interface {
	Ping(ctx context.Context) error
}

// NewService creates the generation service for the configured provider.
// A missing or placeholder key fails with domain.ErrConfiguration before
// any network call.
func NewService(ctx context.Context, settings *domain.GenerationSettings) (driven.GenerationService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: generation settings are required", domain.ErrConfiguration)
	}
	if domain.IsPlaceholderKey(settings.APIKey) {
		return nil, fmt.Errorf("%w: no API key configured for %s", domain.ErrConfiguration, settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return openai.NewService(openai.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Timeout:           time.Duration(settings.TimeoutSeconds) * time.Second,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	case domain.AIProviderGemini:
		ctx, cancel := context.WithTimeout(ctx, time.Duration(max(settings.TimeoutSeconds, 1))*time.Second)
		defer cancel()
		return gemini.NewService(ctx, gemini.Config{
			APIKey:            settings.APIKey,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}

// UsesStoredPrompts reports whether the provider resolves prompt ids server side.
// Other providers are sent the prompt text as instructions.
func UsesStoredPrompts(provider domain.AIProvider) bool {
	return provider == domain.AIProviderOpenAI
}

// Ensure ConfigValidator implements the interface.
var _ driven.GenerationValidator = (*ConfigValidator)(nil)

// ConfigValidator validates generation configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new generation config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateGeneration creates the service and, where supported, pings it.
func (v *ConfigValidator) ValidateGeneration(settings *domain.GenerationSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	svc, err := NewService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	if p, ok := svc.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
