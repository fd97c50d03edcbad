// Package filesystem provides a text source that reads legal documents from
// project directories on local disk. A project is a directory under the
// projects root; each regular file in it is one document.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/logger"
)

// DefaultMaxFileSize is the largest file read for extraction.
const DefaultMaxFileSize = 50 << 20

// DefaultDebounce is how long Watch waits for file activity to settle.
const DefaultDebounce = 500 * time.Millisecond

// Extractor turns file bytes into text. *normalisers.Registry satisfies it.
type Extractor interface {
	Supports(filename string) bool
	Extract(ctx context.Context, filename string, content []byte) (string, error)
}

// TextProcessor cleans extracted text. *postprocessors.Pipeline satisfies it.
type TextProcessor interface {
	Process(ctx context.Context, filename, text string) (string, error)
}

// Source reads project documents from disk.
type Source struct {
	root        string
	extractor   Extractor
	processor   TextProcessor
	maxFileSize int64
	debounce    time.Duration
}

var (
	_ driven.TextSource     = (*Source)(nil)
	_ driven.ProjectWatcher = (*Source)(nil)
)

// Option configures the source.
type Option func(*Source)

// WithProcessor runs extracted text through p before it is returned.
func WithProcessor(p TextProcessor) Option {
	return func(s *Source) { s.processor = p }
}

// WithMaxFileSize limits the size of files read for extraction.
func WithMaxFileSize(n int64) Option {
	return func(s *Source) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// WithDebounce sets the quiet period Watch waits before emitting.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// New creates a source rooted at root. An empty root selects ~/.lexmerge/projects.
func New(root string, extractor Extractor, opts ...Option) (*Source, error) {
	resolved, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}
	s := &Source{
		root:        resolved,
		extractor:   extractor,
		maxFileSize: DefaultMaxFileSize,
		debounce:    DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the projects root directory.
func (s *Source) Root() string {
	return s.root
}

// Projects lists project directories, sorted. A missing root has no projects.
func (s *Source) Projects(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading projects root: %w", err)
	}

	projects := []string{}
	for _, entry := range entries {
		if entry.IsDir() && !isHidden(entry.Name()) {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// Load extracts every regular, non-hidden file in the project, sorted by name.
// Files that cannot be read or extracted are returned with empty text and
// ExtractionSucceeded set to false.
func (s *Source) Load(ctx context.Context, projectID string) ([]domain.SourceText, error) {
	dir, err := ResolveProjectDir(s.root, projectID)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", projectID, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", projectID, err)
	}

	docs := []domain.SourceText{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isHidden(entry.Name()) || !entry.Type().IsRegular() {
			continue
		}
		docs = append(docs, s.loadFile(ctx, dir, entry.Name()))
	}

	logger.Debug("Loaded %d documents from %s", len(docs), dir)
	return docs, nil
}

// loadFile extracts a single document, recording failures on the result.
func (s *Source) loadFile(ctx context.Context, dir, name string) domain.SourceText {
	doc := domain.SourceText{Filename: name}
	fail := func(err error) domain.SourceText {
		logger.Warn("Extraction failed for %s: %v", name, err)
		doc.ExtractionError = err.Error()
		return doc
	}

	if !s.extractor.Supports(name) {
		return fail(fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(name)))
	}

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return fail(err)
	}
	if info.Size() > s.maxFileSize {
		return fail(fmt.Errorf("file is %d bytes, limit is %d", info.Size(), s.maxFileSize))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}

	text, err := s.extractor.Extract(ctx, name, content)
	if err != nil {
		return fail(err)
	}

	if s.processor != nil {
		text, err = s.processor.Process(ctx, name, text)
		if err != nil {
			return fail(err)
		}
	}

	doc.Text = text
	doc.ExtractionSucceeded = true
	return doc
}
