package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/logger"
)

// placeholderContract stands in for a base agreement whose text is unavailable.
const placeholderContract = "[Base agreement text unavailable]"

// Merger folds a project's amendments into its base agreement.
type Merger struct {
	driver       *ContinuationDriver
	prompt       domain.PromptRef
	instructions string
	maxRetries   int
}

// NewMerger creates a merger. A nil driver always produces the fallback result.
func NewMerger(driver *ContinuationDriver, prompt domain.PromptRef, maxRetries int) *Merger {
	return &Merger{
		driver:       driver,
		prompt:       prompt,
		instructions: driven.DefaultPrompts[driven.PromptMerge],
		maxRetries:   maxRetries,
	}
}

// SetInstructions overrides the instructions sent when no stored prompt is configured.
func (m *Merger) SetInstructions(text string) {
	if text != "" {
		m.instructions = text
	}
}

// MergeBatch merges a classification batch in its chronological order.
func (m *Merger) MergeBatch(ctx context.Context, batch domain.ClassificationBatch) (*domain.MergeResult, error) {
	return m.Merge(ctx, batch.Ordered())
}

// Merge produces a merged contract from docs, which must be in chronological order.
//
// The only error is domain.ErrNoUsableInput, returned when no document has
// text. Every other failure, including a panic while building the result,
// yields a deterministic metadata-only result with Fallback set.
func (m *Merger) Merge(ctx context.Context, docs []domain.Document) (result *domain.MergeResult, err error) {
	logger.Section("Merge")

	usable := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if d.HasText() {
			usable = append(usable, d)
		}
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("%w: none of %d documents has text", domain.ErrNoUsableInput, len(docs))
	}
	logger.Debug("merging %d of %d documents", len(usable), len(docs))

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("merge recovered from panic, using fallback: %v", r)
			result, err = FallbackMerge(docs), nil
		}
	}()

	if m.driver == nil {
		logger.Debug("no generation service configured, using fallback")
		return FallbackMerge(docs), nil
	}

	payload, perr := m.request(ctx, usable)
	if perr != nil {
		logger.Warn("merge fell back to metadata summary: %v", perr)
		return FallbackMerge(docs), nil
	}

	result = &domain.MergeResult{
		BaseSummary:              payload.BaseSummary,
		AmendmentSummaries:       payload.AmendmentSummaries,
		ClauseChangeLog:          payload.ClauseChangeLog,
		FinalContract:            payload.FinalContract,
		DocumentIncorporationLog: payload.DocumentIncorporationLog,
	}
	if !payload.HasIncorporationLog || len(result.DocumentIncorporationLog) != len(docs) {
		if payload.HasIncorporationLog {
			logger.Debug("incorporation log has %d entries for %d documents, rebuilding",
				len(result.DocumentIncorporationLog), len(docs))
		}
		result.DocumentIncorporationLog = IncorporationLog(docs)
	}
	return result, nil
}

// request sends the interleaved merge request and validates the response.
func (m *Merger) request(ctx context.Context, usable []domain.Document) (*MergePayload, error) {
	input := make([]driven.Message, 0, 2*len(usable)+1)
	order := make([]string, 0, len(usable))
	for i, d := range usable {
		input = append(input,
			driven.UserMessage(fmt.Sprintf("%s: %s", d.Filename, d.Role)),
			driven.UserMessage(d.Text),
		)
		order = append(order, fmt.Sprintf("%d. %s", i+1, incorporationLine(d)))
	}
	input = append(input, driven.UserMessage("Chronological order:\n"+strings.Join(order, "\n")))

	base := driven.GenerationRequest{Prompt: m.prompt}
	if m.prompt.ID == "" {
		base.Instructions = m.instructions
	}

	text, err := m.driver.Run(ctx, base, input, m.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("merge request: %w", err)
	}
	return ParseMerge(text)
}

// IncorporationLog returns one "filename (role, date)" line per document.
func IncorporationLog(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = incorporationLine(d)
	}
	return out
}

func incorporationLine(d domain.Document) string {
	return fmt.Sprintf("%s (%s, %s)", d.Filename, d.Role, d.DisplayDate())
}

// FallbackMerge builds a result from document metadata alone.
// The output depends only on docs.
func FallbackMerge(docs []domain.Document) *domain.MergeResult {
	var bases []domain.Document
	var amendments, ancillary int
	for _, d := range docs {
		switch d.Role {
		case domain.RoleBase:
			bases = append(bases, d)
		case domain.RoleAmendment:
			amendments++
		default:
			ancillary++
		}
	}

	result := &domain.MergeResult{
		BaseSummary:              fallbackBaseSummary(bases, len(docs)),
		AmendmentSummaries:       []domain.AmendmentSummary{},
		ClauseChangeLog:          []domain.ClauseChange{},
		DocumentIncorporationLog: IncorporationLog(docs),
		Fallback:                 true,
	}

	for _, d := range docs {
		if d.Role == domain.RoleBase {
			continue
		}
		result.AmendmentSummaries = append(result.AmendmentSummaries, domain.AmendmentSummary{
			Document: d.Filename,
			Role:     d.Role,
			Changes:  metadataFacts(d),
		})
		if d.Role == domain.RoleAmendment {
			result.ClauseChangeLog = append(result.ClauseChangeLog, domain.ClauseChange{
				Section:    "Amendment: " + d.Filename,
				ChangeType: domain.ChangeModified,
				Summary: fmt.Sprintf("%s (%s) modifies %s; clause-level changes were not extracted.",
					d.Filename, d.DisplayDate(), amendsTarget(d)),
			})
		}
	}

	contract := placeholderContract
	for _, b := range bases {
		if b.HasText() {
			contract = b.Text
			break
		}
	}
	result.FinalContract = fmt.Sprintf(
		"%s\n\n---\nThis consolidated contract incorporates %d amendment(s) and %d ancillary document(s). "+
			"Amended terms were not applied to the text above; consult the listed documents.",
		contract, amendments, ancillary)

	return result
}

func fallbackBaseSummary(bases []domain.Document, total int) string {
	if len(bases) == 0 {
		return fmt.Sprintf("No base agreement was identified among %d document(s).", total)
	}
	names := make([]string, len(bases))
	for i, b := range bases {
		names[i] = b.Filename
	}
	if len(bases) == 1 {
		return fmt.Sprintf("Base agreement: %s (%s).", names[0], bases[0].DisplayDate())
	}
	return fmt.Sprintf("%d base agreements: %s.", len(bases), strings.Join(names, ", "))
}

func metadataFacts(d domain.Document) []string {
	facts := []string{
		"Role: " + d.Role.String(),
		"Execution date: " + formatDate(d.ExecutionDate),
		"Effective date: " + formatDate(d.EffectiveDate),
	}
	if d.Amends != "" {
		facts = append(facts, "Amends: "+d.Amends)
	}
	switch {
	case d.HasText():
		facts = append(facts, fmt.Sprintf("Text length: %d characters", utf8.RuneCountInString(d.Text)))
	case d.ExtractionError != "":
		facts = append(facts, "Text extraction failed: "+d.ExtractionError)
	default:
		facts = append(facts, "Text extraction failed: no text found")
	}
	return facts
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "unknown"
	}
	return t.Format(domain.DateLayout)
}

func amendsTarget(d domain.Document) string {
	if d.Amends == "" {
		return BaseAgreementReference
	}
	return d.Amends
}
