package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

// normaliseRaw strips code fences and any prose before the first '{'.
func normaliseRaw(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	if i := strings.IndexByte(s, '{'); i > 0 {
		s = s[i:]
	}
	return s
}

// RepairBraces appends one closing brace per unmatched opening brace.
// Returns the input unchanged when braces already balance or close too often.
func RepairBraces(s string) string {
	missing := strings.Count(s, "{") - strings.Count(s, "}")
	if missing <= 0 {
		return s
	}
	return s + strings.Repeat("}", missing)
}

// DecodeObject decodes raw generated text into a JSON object.
// It tries a direct decode, then a single brace-repaired decode.
// Failures return a *domain.ParseFailure carrying rawText.
func DecodeObject(rawText string) (map[string]any, error) {
	s := normaliseRaw(rawText)

	var obj map[string]any
	err := json.Unmarshal([]byte(s), &obj)
	if err == nil && obj != nil {
		return obj, nil
	}

	repaired := RepairBraces(s)
	if repaired != s {
		var again map[string]any
		if rerr := json.Unmarshal([]byte(repaired), &again); rerr == nil && again != nil {
			return again, nil
		}
	}

	if err == nil {
		err = fmt.Errorf("top-level value is not an object")
	}
	return nil, &domain.ParseFailure{RawText: rawText, Err: err}
}

// ClassificationEntry is one document entry returned by the classification request.
type ClassificationEntry struct {
	Filename      string
	Role          string
	ExecutionDate string
	EffectiveDate string
	Amends        string
	Confidence    float64
}

// ClassificationPayload is the validated classification response.
type ClassificationPayload struct {
	Documents          []ClassificationEntry
	ChronologicalOrder []string
}

// ParseClassification decodes and validates a classification response.
// The response must contain a "documents" array.
func ParseClassification(rawText string) (*ClassificationPayload, error) {
	obj, err := DecodeObject(rawText)
	if err != nil {
		return nil, err
	}

	docs, ok := obj["documents"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: classification requires a documents array", domain.ErrValidation)
	}

	payload := &ClassificationPayload{
		Documents:          make([]ClassificationEntry, 0, len(docs)),
		ChronologicalOrder: stringList(field(obj, "chronological_order", "chronologicalOrder")),
	}
	for _, item := range docs {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		payload.Documents = append(payload.Documents, ClassificationEntry{
			Filename:      stringValue(field(m, "filename", "file_name", "document")),
			Role:          stringValue(field(m, "role")),
			ExecutionDate: stringValue(field(m, "execution_date", "executionDate")),
			EffectiveDate: stringValue(field(m, "effective_date", "effectiveDate")),
			Amends:        stringValue(field(m, "amends")),
			Confidence:    floatValue(field(m, "confidence")),
		})
	}
	return payload, nil
}

// MergePayload is the validated merge response.
type MergePayload struct {
	BaseSummary              string
	AmendmentSummaries       []domain.AmendmentSummary
	ClauseChangeLog          []domain.ClauseChange
	FinalContract            string
	DocumentIncorporationLog []string

	// HasIncorporationLog is false when the service omitted the log.
	HasIncorporationLog bool
}

// ParseMerge decodes and validates a merge response.
// The response must contain a non-empty "base_summary" string.
// Missing or non-array optional lists are coerced to empty slices.
func ParseMerge(rawText string) (*MergePayload, error) {
	obj, err := DecodeObject(rawText)
	if err != nil {
		return nil, err
	}

	summary, ok := field(obj, "base_summary", "baseSummary").(string)
	if !ok || strings.TrimSpace(summary) == "" {
		return nil, fmt.Errorf("%w: merge requires a non-empty base_summary", domain.ErrValidation)
	}

	payload := &MergePayload{
		BaseSummary:        summary,
		FinalContract:      stringValue(field(obj, "final_contract", "finalContract")),
		AmendmentSummaries: []domain.AmendmentSummary{},
		ClauseChangeLog:    []domain.ClauseChange{},
	}

	if items, ok := field(obj, "amendment_summaries", "amendmentSummaries").([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			changes := stringList(field(m, "changes"))
			if changes == nil {
				changes = []string{}
			}
			payload.AmendmentSummaries = append(payload.AmendmentSummaries, domain.AmendmentSummary{
				Document: stringValue(field(m, "document", "filename")),
				Role:     domain.ParseRole(stringValue(field(m, "role"))),
				Changes:  changes,
			})
		}
	}

	if items, ok := field(obj, "clause_change_log", "clauseChangeLog").([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			payload.ClauseChangeLog = append(payload.ClauseChangeLog, domain.ClauseChange{
				Section:    stringValue(field(m, "section")),
				ChangeType: domain.ParseChangeType(stringValue(field(m, "change_type", "changeType"))),
				OldText:    stringValue(field(m, "old_text", "oldText")),
				NewText:    stringValue(field(m, "new_text", "newText")),
				Summary:    stringValue(field(m, "summary")),
			})
		}
	}

	if log, ok := field(obj, "document_incorporation_log", "documentIncorporationLog").([]any); ok {
		payload.HasIncorporationLog = true
		payload.DocumentIncorporationLog = stringList(log)
		if payload.DocumentIncorporationLog == nil {
			payload.DocumentIncorporationLog = []string{}
		}
	} else {
		payload.DocumentIncorporationLog = []string{}
	}

	return payload, nil
}

// field returns the first present key's value.
func field(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// stringValue converts scalars to strings; nil and composites become "".
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return ""
	}
}

// floatValue converts JSON numbers to float64.
func floatValue(v any) float64 {
	f, _ := v.(float64)
	return f
}

// stringList converts a JSON array to non-empty strings. Non-arrays return nil.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := stringValue(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
