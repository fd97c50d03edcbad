package mcp

import (
	"context"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driving"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	batch   *domain.ClassificationBatch
	result  *domain.MergeResult
	history []domain.MergeResult
	err     error

	lastProject string
	lastOpts    driving.AnalyzeOptions
}

func (m *mockAnalysisService) Classify(_ context.Context, projectID string) (*domain.ClassificationBatch, error) {
	m.lastProject = projectID
	return m.batch, m.err
}

func (m *mockAnalysisService) Merge(_ context.Context, projectID string) (*domain.MergeResult, error) {
	m.lastProject = projectID
	return m.result, m.err
}

func (m *mockAnalysisService) Analyze(
	_ context.Context,
	projectID string,
	opts driving.AnalyzeOptions,
) (*domain.MergeResult, error) {
	m.lastProject = projectID
	m.lastOpts = opts
	return m.result, m.err
}

func (m *mockAnalysisService) AnalyzeMany(
	_ context.Context,
	_ []string,
	_ driving.AnalyzeOptions,
) (map[string]*domain.MergeResult, error) {
	return nil, m.err
}

func (m *mockAnalysisService) Result(_ context.Context, projectID string) (*domain.MergeResult, error) {
	m.lastProject = projectID
	return m.result, m.err
}

func (m *mockAnalysisService) History(_ context.Context, projectID string) ([]domain.MergeResult, error) {
	m.lastProject = projectID
	return m.history, m.err
}

// mockProjectLister is a mock implementation of ProjectLister.
type mockProjectLister struct {
	projects []string
	err      error
}

func (m *mockProjectLister) Projects(_ context.Context) ([]string, error) {
	return m.projects, m.err
}
