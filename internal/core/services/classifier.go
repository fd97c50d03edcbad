package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/logger"
)

// Classifier assigns roles and dates to project documents and orders them.
// It never fails: anything the generative service cannot classify falls back
// to the filename heuristic.
type Classifier struct {
	driver       *ContinuationDriver
	prompt       domain.PromptRef
	instructions string
	maxRetries   int
	matcher      FilenameMatcher
	sequencer    *Sequencer
	now          func() time.Time
}

// NewClassifier creates a classifier. A nil driver classifies every document
// with the filename heuristic.
func NewClassifier(driver *ContinuationDriver, prompt domain.PromptRef, maxRetries int) *Classifier {
	return &Classifier{
		driver:       driver,
		prompt:       prompt,
		instructions: driven.DefaultPrompts[driven.PromptClassify],
		maxRetries:   maxRetries,
		matcher:      CascadeMatcher{},
		sequencer:    NewSequencer(CascadeMatcher{}),
		now:          time.Now,
	}
}

// SetMatcher replaces the filename matching strategy.
func (c *Classifier) SetMatcher(m FilenameMatcher) {
	if m == nil {
		return
	}
	c.matcher = m
	c.sequencer = NewSequencer(m)
}

// SetClock sets the source of "today" used for missing dates.
func (c *Classifier) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// SetInstructions overrides the instructions sent when no stored prompt is configured.
func (c *Classifier) SetInstructions(text string) {
	if text != "" {
		c.instructions = text
	}
}

// Classify classifies sources and returns them with a chronological order.
// Every source appears in the result exactly once, in input order.
func (c *Classifier) Classify(ctx context.Context, sources []domain.SourceText) domain.ClassificationBatch {
	logger.Section("Classification")

	now := c.now()
	usable := make([]domain.SourceText, 0, len(sources))
	for _, s := range sources {
		if s.HasText() {
			usable = append(usable, s)
		}
	}
	logger.Debug("%d documents, %d with text", len(sources), len(usable))

	if c.driver == nil || len(usable) == 0 {
		if c.driver == nil {
			logger.Debug("no generation service configured, using filename heuristic")
		}
		return c.heuristicBatch(sources, now)
	}

	payload, err := c.request(ctx, usable)
	if err != nil {
		logger.Warn("classification fell back to filename heuristic: %v", err)
		return c.heuristicBatch(sources, now)
	}

	docs := c.reconcile(sources, usable, payload, now)
	return domain.ClassificationBatch{
		Documents:          docs,
		ChronologicalOrder: c.sequencer.Order(docs, payload.ChronologicalOrder),
	}
}

// request runs the classification call and validates its shape.
func (c *Classifier) request(ctx context.Context, usable []domain.SourceText) (*ClassificationPayload, error) {
	input := make([]driven.Message, 0, len(usable))
	for _, s := range usable {
		input = append(input, driven.UserMessage(fmt.Sprintf("Document: %s\n\n%s", s.Filename, s.Text)))
	}

	base := driven.GenerationRequest{Prompt: c.prompt}
	if c.prompt.ID == "" {
		base.Instructions = c.instructions
	}

	text, err := c.driver.Run(ctx, base, input, c.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("classification request: %w", err)
	}
	return ParseClassification(text)
}

// reconcile maps generated entries back onto the real files.
func (c *Classifier) reconcile(
	sources, usable []domain.SourceText,
	payload *ClassificationPayload,
	now time.Time,
) []domain.Document {
	candidates := make([]string, len(payload.Documents))
	for i, e := range payload.Documents {
		candidates[i] = e.Filename
	}
	names := make([]string, len(usable))
	for i, s := range usable {
		names[i] = s.Filename
	}
	matches := claimMatches(c.matcher, names, candidates)

	today := domain.Day(now)
	docs := make([]domain.Document, 0, len(sources))
	for _, s := range sources {
		idx, ok := matches[s.Filename]
		if !s.HasText() || !ok {
			if s.HasText() {
				logger.Debug("%s: no generated entry, using filename heuristic", s.Filename)
			}
			docs = append(docs, c.heuristicDocument(s, now))
			continue
		}

		entry := payload.Documents[idx]
		doc := domain.Document{
			Filename:      s.Filename,
			Text:          s.Text,
			Role:          domain.ParseRole(entry.Role),
			ExecutionDate: domain.ParseDate(entry.ExecutionDate),
			EffectiveDate: domain.ParseDate(entry.EffectiveDate),
			Amends:        entry.Amends,
			Confidence:    entry.Confidence,
			Source:        domain.SourceGenerated,
		}
		if doc.ExecutionDate == nil {
			d := today
			doc.ExecutionDate = &d
		}
		if doc.EffectiveDate == nil {
			d := today
			doc.EffectiveDate = &d
		}
		docs = append(docs, doc)
	}
	return docs
}

// heuristicBatch classifies every source by filename.
func (c *Classifier) heuristicBatch(sources []domain.SourceText, now time.Time) domain.ClassificationBatch {
	docs := make([]domain.Document, 0, len(sources))
	for _, s := range sources {
		docs = append(docs, c.heuristicDocument(s, now))
	}
	return domain.ClassificationBatch{
		Documents:          docs,
		ChronologicalOrder: c.sequencer.Order(docs, nil),
	}
}

func (c *Classifier) heuristicDocument(s domain.SourceText, now time.Time) domain.Document {
	doc := HeuristicClassify(s.Filename, now)
	doc.Text = s.Text
	if !s.HasText() {
		doc.Text = ""
		doc.ExtractionError = s.ExtractionError
		if doc.ExtractionError == "" {
			doc.ExtractionError = "no text extracted"
		}
	}
	return doc
}
