package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
)

const baseText = "MASTER SERVICES AGREEMENT\n1. Term. One year."

func mergeDocs() []domain.Document {
	return []domain.Document{
		{Filename: "MSA.pdf", Text: baseText, Role: domain.RoleBase, ExecutionDate: date("2023-01-15")},
		{Filename: "Amendment 1.pdf", Text: "Section 1 is replaced: two years.", Role: domain.RoleAmendment,
			ExecutionDate: date("2023-06-01"), Amends: "MSA.pdf"},
		{Filename: "Exhibit A.pdf", Role: domain.RoleAncillary, ExtractionError: "encrypted"},
	}
}

const mergeJSON = `{
	"base_summary": "One-year services agreement.",
	"amendment_summaries": [{"document": "Amendment 1.pdf", "role": "amendment", "changes": ["Term extended to two years"]}],
	"clause_change_log": [{"section": "1", "change_type": "modified", "old_text": "One year.", "new_text": "Two years.", "summary": "Term extended"}],
	"final_contract": "MASTER SERVICES AGREEMENT\n1. Term. Two years.",
	"document_incorporation_log": ["MSA.pdf (base, 2023-01-15)", "Amendment 1.pdf (amendment, 2023-06-01)", "Exhibit A.pdf (ancillary, undated)"]
}`

func newTestMerger(gen driven.GenerationService) *Merger {
	var driver *ContinuationDriver
	if gen != nil {
		driver = NewContinuationDriver(gen, 1000)
	}
	return NewMerger(driver, domain.PromptRef{ID: "pmpt_merge", Version: "1"}, 3)
}

func TestMerger_Success(t *testing.T) {
	gen := newScriptedGeneration(completed("r1", mergeJSON))
	m := newTestMerger(gen)

	result, err := m.Merge(context.Background(), mergeDocs())
	require.NoError(t, err)

	want := &domain.MergeResult{
		BaseSummary: "One-year services agreement.",
		AmendmentSummaries: []domain.AmendmentSummary{
			{Document: "Amendment 1.pdf", Role: domain.RoleAmendment, Changes: []string{"Term extended to two years"}},
		},
		ClauseChangeLog: []domain.ClauseChange{
			{Section: "1", ChangeType: domain.ChangeModified, OldText: "One year.", NewText: "Two years.", Summary: "Term extended"},
		},
		FinalContract: "MASTER SERVICES AGREEMENT\n1. Term. Two years.",
		DocumentIncorporationLog: []string{
			"MSA.pdf (base, 2023-01-15)", "Amendment 1.pdf (amendment, 2023-06-01)", "Exhibit A.pdf (ancillary, undated)",
		},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("merge result mismatch (-want +got):\n%s", diff)
	}
}

func TestMerger_InterleavedRequest(t *testing.T) {
	gen := newScriptedGeneration(completed("r1", mergeJSON))
	m := newTestMerger(gen)

	_, err := m.Merge(context.Background(), mergeDocs())
	require.NoError(t, err)

	req := gen.request(0)
	require.Len(t, req.Input, 5)
	assert.Equal(t, "MSA.pdf: base", req.Input[0].Text)
	assert.Equal(t, baseText, req.Input[1].Text)
	assert.Equal(t, "Amendment 1.pdf: amendment", req.Input[2].Text)
	assert.Equal(t, "Section 1 is replaced: two years.", req.Input[3].Text)
	assert.Equal(t,
		"Chronological order:\n1. MSA.pdf (base, 2023-01-15)\n2. Amendment 1.pdf (amendment, 2023-06-01)",
		req.Input[4].Text)
	assert.Equal(t, domain.PromptRef{ID: "pmpt_merge", Version: "1"}, req.Prompt)
}

func TestMerger_SynthesisesMissingIncorporationLog(t *testing.T) {
	gen := newScriptedGeneration(completed("r1", `{"base_summary": "S", "final_contract": "C"}`))
	result, err := newTestMerger(gen).Merge(context.Background(), mergeDocs())
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.Equal(t, IncorporationLog(mergeDocs()), result.DocumentIncorporationLog)
	assert.NotNil(t, result.AmendmentSummaries)
	assert.NotNil(t, result.ClauseChangeLog)
}

func TestMerger_ReplacesShortIncorporationLog(t *testing.T) {
	gen := newScriptedGeneration(completed("r1", `{"base_summary": "S", "document_incorporation_log": ["MSA.pdf"]}`))
	result, err := newTestMerger(gen).Merge(context.Background(), mergeDocs())
	require.NoError(t, err)
	assert.Len(t, result.DocumentIncorporationLog, 3)
}

func TestMerger_NoUsableInput(t *testing.T) {
	gen := newScriptedGeneration(completed("r1", mergeJSON))
	docs := []domain.Document{{Filename: "a.pdf", Role: domain.RoleBase}, {Filename: "b.pdf", Text: "\n"}}

	result, err := newTestMerger(gen).Merge(context.Background(), docs)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNoUsableInput)
	assert.Equal(t, 0, gen.calls())
}

// Scenario D: the service is unreachable for the merge call.
func TestMerger_FallbackWhenUnreachable(t *testing.T) {
	gen := newScriptedGeneration(transportFailure())
	result, err := newTestMerger(gen).Merge(context.Background(), mergeDocs())
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.True(t, strings.HasPrefix(result.FinalContract, baseText))
	assert.Equal(t, []string{
		"MSA.pdf (base, 2023-01-15)",
		"Amendment 1.pdf (amendment, 2023-06-01)",
		"Exhibit A.pdf (ancillary, undated)",
	}, result.DocumentIncorporationLog)
}

func TestMerger_FallbackOnInvalidResponses(t *testing.T) {
	tests := []struct {
		name string
		step scriptedStep
	}{
		{"garbage", completed("r1", "<html>502 Bad Gateway</html>")},
		{"missing base summary", completed("r1", `{"final_contract": "x"}`)},
		{"empty base summary", completed("r1", `{"base_summary": ""}`)},
		{"error variant", scriptedStep{resp: &driven.GenerationResponse{Kind: driven.ResponseError, ErrorMessage: "rate limited"}}},
		{"retries exhausted", truncated("r1", `{"base_summary": "`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestMerger(newScriptedGeneration(tt.step)).Merge(context.Background(), mergeDocs())
			require.NoError(t, err)
			assert.True(t, result.Fallback)
			assert.Len(t, result.DocumentIncorporationLog, 3)
		})
	}
}

func TestMerger_FallbackOnPanic(t *testing.T) {
	gen := newScriptedGeneration(completed("r1", mergeJSON))
	gen.panicMsg = "boom"

	result, err := newTestMerger(gen).Merge(context.Background(), mergeDocs())
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Len(t, result.DocumentIncorporationLog, 3)
}

func TestMerger_OfflineUsesFallback(t *testing.T) {
	result, err := newTestMerger(nil).Merge(context.Background(), mergeDocs())
	require.NoError(t, err)
	assert.True(t, result.Fallback)
}

func TestMerger_MergeBatchUsesChronologicalOrder(t *testing.T) {
	gen := newScriptedGeneration(completed("r1", mergeJSON))
	docs := mergeDocs()
	batch := domain.ClassificationBatch{
		Documents:          []domain.Document{docs[1], docs[2], docs[0]},
		ChronologicalOrder: []string{"MSA.pdf", "Amendment 1.pdf", "Exhibit A.pdf"},
	}

	_, err := newTestMerger(gen).MergeBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, "MSA.pdf: base", gen.request(0).Input[0].Text)
}

func TestFallbackMerge(t *testing.T) {
	result := FallbackMerge(mergeDocs())

	assert.True(t, result.Fallback)
	assert.Equal(t, "Base agreement: MSA.pdf (2023-01-15).", result.BaseSummary)

	require.Len(t, result.AmendmentSummaries, 2)
	assert.Equal(t, "Amendment 1.pdf", result.AmendmentSummaries[0].Document)
	assert.Equal(t, []string{
		"Role: amendment",
		"Execution date: 2023-06-01",
		"Effective date: unknown",
		"Amends: MSA.pdf",
		"Text length: 33 characters",
	}, result.AmendmentSummaries[0].Changes)
	assert.Equal(t, domain.RoleAncillary, result.AmendmentSummaries[1].Role)
	assert.Contains(t, result.AmendmentSummaries[1].Changes, "Text extraction failed: encrypted")

	require.Len(t, result.ClauseChangeLog, 1)
	assert.Equal(t, domain.ChangeModified, result.ClauseChangeLog[0].ChangeType)
	assert.Equal(t, "Amendment: Amendment 1.pdf", result.ClauseChangeLog[0].Section)

	assert.True(t, strings.HasPrefix(result.FinalContract, baseText))
	assert.Contains(t, result.FinalContract, "1 amendment(s) and 1 ancillary document(s)")
}

func TestFallbackMerge_ListsBothDates(t *testing.T) {
	result := FallbackMerge([]domain.Document{{
		Filename:      "Amendment 2.pdf",
		Text:          "Term: 3 yrs.",
		Role:          domain.RoleAmendment,
		ExecutionDate: date("2024-01-01"),
		EffectiveDate: date("2024-02-01"),
	}})

	require.Len(t, result.AmendmentSummaries, 1)
	changes := result.AmendmentSummaries[0].Changes
	assert.Contains(t, changes, "Execution date: 2024-01-01")
	assert.Contains(t, changes, "Effective date: 2024-02-01")
	assert.Contains(t, changes, "Text length: 12 characters")
	assert.NotContains(t, strings.Join(changes, "\n"), "extraction failed")
}

func TestFallbackMerge_NoBase(t *testing.T) {
	docs := []domain.Document{
		{Filename: "Amendment.pdf", Text: "x", Role: domain.RoleAmendment},
		{Filename: "Rider.pdf", Text: "y", Role: domain.RoleAncillary},
	}
	result := FallbackMerge(docs)

	assert.Equal(t, "No base agreement was identified among 2 document(s).", result.BaseSummary)
	assert.True(t, strings.HasPrefix(result.FinalContract, placeholderContract))
	assert.Contains(t, result.ClauseChangeLog[0].Summary, BaseAgreementReference)
	assert.Len(t, result.DocumentIncorporationLog, 2)
}

func TestFallbackMerge_Deterministic(t *testing.T) {
	assert.Equal(t, FallbackMerge(mergeDocs()), FallbackMerge(mergeDocs()))
}

func TestIncorporationLog_LengthMatchesDocuments(t *testing.T) {
	for n := 0; n < 6; n++ {
		docs := make([]domain.Document, n)
		for i := range docs {
			docs[i] = domain.Document{Filename: strings.Repeat("d", i+1), Role: domain.RoleAncillary}
		}
		assert.Len(t, IncorporationLog(docs), n)
		assert.Len(t, FallbackMerge(docs).DocumentIncorporationLog, n)
	}
}
