package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driving"
	"github.com/custodia-labs/lexmerge/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisService runs the classify and merge pipeline for projects and
// caches the results.
type AnalysisService struct {
	source     driven.TextSource
	results    driven.ResultStore
	batches    driven.ClassificationStore
	classifier *Classifier
	merger     *Merger

	concurrency int
	now         func() time.Time

	// inflight shares one pipeline run between concurrent callers per project.
	inflight singleflight.Group
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(
	source driven.TextSource,
	results driven.ResultStore,
	batches driven.ClassificationStore,
	classifier *Classifier,
	merger *Merger,
) *AnalysisService {
	return &AnalysisService{
		source:      source,
		results:     results,
		batches:     batches,
		classifier:  classifier,
		merger:      merger,
		concurrency: domain.DefaultConcurrency,
		now:         time.Now,
	}
}

// SetConcurrency bounds how many projects AnalyzeMany runs at once.
func (s *AnalysisService) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// SetClock sets the clock used for result timestamps.
func (s *AnalysisService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Classify classifies the project's documents and stores the batch.
func (s *AnalysisService) Classify(ctx context.Context, projectID string) (*domain.ClassificationBatch, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}

	sources, err := s.source.Load(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	return s.classifyAndStore(ctx, projectID, sources)
}

// Merge merges the stored classification and stores a new result.
// The project is reclassified when no batch is stored or its file set changed.
func (s *AnalysisService) Merge(ctx context.Context, projectID string) (*domain.MergeResult, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}
	return s.shared(projectID, func() (*domain.MergeResult, error) {
		return s.mergeStored(ctx, projectID)
	})
}

// Analyze returns the cached result unless opts.Refresh is set.
func (s *AnalysisService) Analyze(
	ctx context.Context, projectID string, opts driving.AnalyzeOptions,
) (*domain.MergeResult, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}

	if !opts.Refresh {
		cached, err := s.results.Load(ctx, projectID)
		switch {
		case err == nil:
			logger.Debug("project %s: using stored result %s", projectID, cached.ID)
			return cached, nil
		case !errors.Is(err, domain.ErrNotFound):
			logger.Warn("project %s: stored result unavailable: %v", projectID, err)
		}
	}

	return s.shared(projectID, func() (*domain.MergeResult, error) {
		return s.run(ctx, projectID)
	})
}

// AnalyzeMany analyses projects concurrently. Results holds every project
// that succeeded; the error joins the failures of the others.
func (s *AnalysisService) AnalyzeMany(
	ctx context.Context, projectIDs []string, opts driving.AnalyzeOptions,
) (map[string]*domain.MergeResult, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]*domain.MergeResult, len(projectIDs))
		errs    []error
	)

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, id := range dedupe(projectIDs) {
		g.Go(func() error {
			result, err := s.Analyze(ctx, id, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("project %s: %w", id, err))
				return nil
			}
			results[id] = result
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return results, errors.Join(errs...)
}

// Result returns the latest stored result.
func (s *AnalysisService) Result(ctx context.Context, projectID string) (*domain.MergeResult, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}
	return s.results.Load(ctx, projectID)
}

// History returns all stored results, newest first.
func (s *AnalysisService) History(ctx context.Context, projectID string) ([]domain.MergeResult, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}
	return s.results.History(ctx, projectID)
}

// shared runs fn once per project at a time; concurrent callers get the
// same result.
func (s *AnalysisService) shared(projectID string, fn func() (*domain.MergeResult, error)) (*domain.MergeResult, error) {
	v, err, joined := s.inflight.Do(projectID, func() (any, error) {
		return fn()
	})
	if joined {
		logger.Debug("project %s: joined in-flight run", projectID)
	}
	if err != nil {
		return nil, err
	}
	result := *v.(*domain.MergeResult)
	return &result, nil
}

// run executes the full pipeline.
func (s *AnalysisService) run(ctx context.Context, projectID string) (*domain.MergeResult, error) {
	logger.Section("Analyze " + projectID)

	sources, err := s.source.Load(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	batch, err := s.classifyAndStore(ctx, projectID, sources)
	if err != nil {
		return nil, err
	}
	return s.mergeAndStore(ctx, projectID, *batch)
}

// mergeStored merges the stored batch with fresh text from the source.
func (s *AnalysisService) mergeStored(ctx context.Context, projectID string) (*domain.MergeResult, error) {
	sources, err := s.source.Load(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	batch, err := s.batches.LoadBatch(ctx, projectID)
	switch {
	case err == nil && sameFiles(batch.Filenames(), sources):
		rejoinText(batch, sources)
	case err == nil || errors.Is(err, domain.ErrNotFound):
		logger.Debug("project %s: no current classification, classifying", projectID)
		if batch, err = s.classifyAndStore(ctx, projectID, sources); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("load classification %s: %w", projectID, err)
	}

	return s.mergeAndStore(ctx, projectID, *batch)
}

func (s *AnalysisService) classifyAndStore(
	ctx context.Context, projectID string, sources []domain.SourceText,
) (*domain.ClassificationBatch, error) {
	batch := s.classifier.Classify(ctx, sources)
	if err := s.batches.SaveBatch(ctx, projectID, &batch); err != nil {
		return nil, fmt.Errorf("save classification %s: %w", projectID, err)
	}
	return &batch, nil
}

func (s *AnalysisService) mergeAndStore(
	ctx context.Context, projectID string, batch domain.ClassificationBatch,
) (*domain.MergeResult, error) {
	result, err := s.merger.MergeBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("merge project %s: %w", projectID, err)
	}

	result.ID = uuid.NewString()
	result.ProjectID = projectID
	result.CreatedAt = s.now().UTC()

	if err := s.results.Save(ctx, projectID, result); err != nil {
		return nil, fmt.Errorf("save result %s: %w", projectID, err)
	}
	logger.Info("project %s: stored result %s (fallback=%t)", projectID, result.ID, result.Fallback)
	return result, nil
}

func validateProjectID(projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("%w: project id is required", domain.ErrInvalidInput)
	}
	return nil
}

// sameFiles reports whether the stored filenames match the current sources.
func sameFiles(stored []string, sources []domain.SourceText) bool {
	current := make([]string, len(sources))
	for i, s := range sources {
		current[i] = s.Filename
	}
	return domain.IsPermutation(stored, current)
}

// rejoinText copies current text and extraction state onto stored documents.
func rejoinText(batch *domain.ClassificationBatch, sources []domain.SourceText) {
	byName := make(map[string]domain.SourceText, len(sources))
	for _, s := range sources {
		byName[s.Filename] = s
	}
	for i := range batch.Documents {
		src := byName[batch.Documents[i].Filename]
		batch.Documents[i].Text = src.Text
		if !src.HasText() {
			batch.Documents[i].Text = ""
			batch.Documents[i].ExtractionError = src.ExtractionError
		}
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
