package cli

import (
	"context"
	"sync"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driving"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	mu sync.Mutex

	batch   *domain.ClassificationBatch
	result  *domain.MergeResult
	results map[string]*domain.MergeResult
	history []domain.MergeResult
	err     error

	analyzeOpts []driving.AnalyzeOptions
	projects    []string
}

func (m *mockAnalysisService) record(projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append(m.projects, projectID)
}

func (m *mockAnalysisService) Classify(_ context.Context, projectID string) (*domain.ClassificationBatch, error) {
	m.record(projectID)
	return m.batch, m.err
}

func (m *mockAnalysisService) Merge(_ context.Context, projectID string) (*domain.MergeResult, error) {
	m.record(projectID)
	return m.result, m.err
}

func (m *mockAnalysisService) Analyze(
	_ context.Context,
	projectID string,
	opts driving.AnalyzeOptions,
) (*domain.MergeResult, error) {
	m.record(projectID)
	m.mu.Lock()
	m.analyzeOpts = append(m.analyzeOpts, opts)
	m.mu.Unlock()
	return m.result, m.err
}

func (m *mockAnalysisService) AnalyzeMany(
	_ context.Context,
	projectIDs []string,
	opts driving.AnalyzeOptions,
) (map[string]*domain.MergeResult, error) {
	m.mu.Lock()
	m.projects = append(m.projects, projectIDs...)
	m.analyzeOpts = append(m.analyzeOpts, opts)
	m.mu.Unlock()
	return m.results, m.err
}

func (m *mockAnalysisService) Result(_ context.Context, projectID string) (*domain.MergeResult, error) {
	m.record(projectID)
	return m.result, m.err
}

func (m *mockAnalysisService) History(_ context.Context, projectID string) ([]domain.MergeResult, error) {
	m.record(projectID)
	return m.history, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error

	provider domain.AIProvider
	model    string
	apiKey   string
	classify domain.PromptRef
	merge    domain.PromptRef
	root     string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) SetPrompts(classify, merge domain.PromptRef) error {
	m.classify, m.merge = classify, merge
	return nil
}

func (m *mockSettingsService) SetProjectsRoot(path string) error {
	m.root = path
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// mockWatcher replays a prepared channel.
type mockWatcher struct {
	changes chan struct{}
	err     error
}

func (m *mockWatcher) Watch(_ context.Context, _ string) (<-chan struct{}, error) {
	return m.changes, m.err
}
