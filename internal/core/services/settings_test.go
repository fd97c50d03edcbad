package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexmerge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

func noEnv(string) string { return "" }

func newTestSettingsService(validator *mockValidator) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	var service *SettingsService
	if validator != nil {
		service = NewSettingsService(store, validator)
	} else {
		service = NewSettingsService(store, nil)
	}
	service.SetEnvLookup(noEnv)
	return service, store
}

// mockValidator implements driven.GenerationValidator.
type mockValidator struct {
	err   error
	calls int
}

func (v *mockValidator) ValidateGeneration(_ *domain.GenerationSettings) error {
	v.calls++
	return v.err
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Generation.Provider, settings.Generation.Provider)
	assert.Equal(t, "gpt-4.1", settings.Generation.Model)
	assert.Equal(t, domain.DefaultMaxRetries, settings.Generation.MaxRetries)
	assert.Equal(t, domain.DefaultMaxOutputTokens, settings.Generation.MaxOutputTokens)
	assert.InDelta(t, 2.0, settings.Generation.RequestsPerSecond, 0.0001)
	assert.Equal(t, domain.DefaultConcurrency, settings.Analysis.Concurrency)
	assert.Empty(t, settings.Generation.APIKey)
	assert.Equal(t, defaults, service.GetDefaults())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set(KeyProvider, "Gemini")
	_ = store.Set(KeyAPIKey, "stored-key")
	_ = store.Set(KeyMaxRetries, 4)
	_ = store.Set(KeyRequestsPerSecond, 0.0)
	_ = store.Set(KeyClassifyPromptID, "pmpt_c")
	_ = store.Set(KeyClassifyPromptVer, "7")
	_ = store.Set(KeyMergePromptID, "pmpt_m")
	_ = store.Set(KeyProjectsRoot, "/srv/projects")
	_ = store.Set(KeyConcurrency, 8)

	settings, err := service.Get()
	require.NoError(t, err)

	g := settings.Generation
	assert.Equal(t, domain.AIProviderGemini, g.Provider)
	assert.Equal(t, "gemini-2.5-pro", g.Model)
	assert.Equal(t, "stored-key", g.APIKey)
	assert.Equal(t, 4, g.MaxRetries)
	assert.Zero(t, g.RequestsPerSecond)
	assert.Equal(t, domain.PromptRef{ID: "pmpt_c", Version: "7"}, g.ClassifyPrompt)
	assert.Equal(t, domain.PromptRef{ID: "pmpt_m"}, g.MergePrompt)
	assert.Equal(t, "/srv/projects", settings.Analysis.ProjectsRoot)
	assert.Equal(t, 8, settings.Analysis.Concurrency)
}

func TestSettingsService_Get_InvalidProviderReturnsDefault(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set(KeyProvider, "anthropic")

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Generation.Provider)
}

func TestSettingsService_Get_EnvironmentOverridesKey(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		env      map[string]string
		want     string
	}{
		{"generic wins", "openai", map[string]string{EnvAPIKey: "generic", EnvOpenAIAPIKey: "openai"}, "generic"},
		{"openai", "openai", map[string]string{EnvOpenAIAPIKey: "openai", EnvGeminiAPIKey: "gemini"}, "openai"},
		{"gemini", "gemini", map[string]string{EnvOpenAIAPIKey: "openai", EnvGeminiAPIKey: "gemini"}, "gemini"},
		{"none keeps stored", "openai", map[string]string{EnvGeminiAPIKey: "gemini"}, "stored"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newTestSettingsService(nil)
			_ = store.Set(KeyProvider, tt.provider)
			_ = store.Set(KeyAPIKey, "stored")
			service.SetEnvLookup(func(k string) string { return tt.env[k] })

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.want, settings.Generation.APIKey)
		})
	}
}

func TestSettingsService_Save_RoundTrip(t *testing.T) {
	service, store := newTestSettingsService(nil)

	settings := domain.DefaultAppSettings()
	settings.Generation.Model = "gpt-4.1-mini"
	settings.Generation.APIKey = "sk-real"
	settings.Generation.MergePrompt = domain.PromptRef{ID: "pmpt_m", Version: "2"}
	settings.Analysis.ProjectsRoot = "/data"
	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "sk-real", store.GetString(KeyAPIKey))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Save_EmptyKeyKeepsStored(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set(KeyAPIKey, "existing")

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))
	assert.Equal(t, "existing", store.GetString(KeyAPIKey))
}

func TestSettingsService_SetProvider(t *testing.T) {
	validator := &mockValidator{}
	service, store := newTestSettingsService(validator)

	require.NoError(t, service.SetProvider(domain.AIProviderGemini, "", "AIza-real"))
	assert.Equal(t, "gemini", store.GetString(KeyProvider))
	assert.Equal(t, "gemini-2.5-pro", store.GetString(KeyModel))
	assert.Equal(t, "AIza-real", store.GetString(KeyAPIKey))
	assert.Equal(t, 1, validator.calls)

	require.NoError(t, service.SetProvider(domain.AIProviderOpenAI, "o3", "sk-real"))
	assert.Equal(t, "o3", store.GetString(KeyModel))
}

func TestSettingsService_SetProvider_Errors(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	err := service.SetProvider("invalid", "", "key")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	for _, key := range []string{"", "changeme", "your-api-key", "sk-..."} {
		err = service.SetProvider(domain.AIProviderOpenAI, "", key)
		assert.ErrorIs(t, err, domain.ErrConfiguration, key)
	}
}

func TestSettingsService_SetProvider_ValidatorRejects(t *testing.T) {
	rejected := errors.Join(domain.ErrConfiguration, errors.New("bad base url"))
	service, store := newTestSettingsService(&mockValidator{err: rejected})

	err := service.SetProvider(domain.AIProviderOpenAI, "", "sk-real")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	_, saved := store.Get(KeyAPIKey)
	assert.False(t, saved)
}

func TestSettingsService_SetPrompts(t *testing.T) {
	service, store := newTestSettingsService(nil)

	require.NoError(t, service.SetPrompts(domain.PromptRef{ID: "c", Version: "1"}, domain.PromptRef{ID: "m"}))
	assert.Equal(t, "c", store.GetString(KeyClassifyPromptID))
	assert.Equal(t, "1", store.GetString(KeyClassifyPromptVer))
	assert.Equal(t, "m", store.GetString(KeyMergePromptID))
}

func TestSettingsService_SetPrompts_DoesNotPersistEnvironmentKey(t *testing.T) {
	service, store := newTestSettingsService(nil)
	service.SetEnvLookup(func(k string) string {
		if k == EnvAPIKey {
			return "from-env"
		}
		return ""
	})

	require.NoError(t, service.SetPrompts(domain.PromptRef{ID: "c"}, domain.PromptRef{ID: "m"}))
	_, saved := store.Get(KeyAPIKey)
	assert.False(t, saved)
}

func TestSettingsService_SetProjectsRoot(t *testing.T) {
	service, store := newTestSettingsService(nil)

	require.NoError(t, service.SetProjectsRoot(" /data/projects "))
	assert.Equal(t, "/data/projects", store.GetString(KeyProjectsRoot))

	assert.ErrorIs(t, service.SetProjectsRoot("  "), domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	service, store := newTestSettingsService(nil)

	err := service.Validate()
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_ = store.Set(KeyAPIKey, "your-api-key")
	assert.ErrorIs(t, service.Validate(), domain.ErrConfiguration)

	_ = store.Set(KeyAPIKey, "sk-real")
	assert.NoError(t, service.Validate())

	_ = store.Set(KeyMaxRetries, -1)
	assert.ErrorIs(t, service.Validate(), domain.ErrConfiguration)
}

func TestSettingsService_Validate_UsesValidator(t *testing.T) {
	validator := &mockValidator{}
	service, store := newTestSettingsService(validator)
	_ = store.Set(KeyAPIKey, "sk-real")

	require.NoError(t, service.Validate())
	assert.Equal(t, 1, validator.calls)
}
