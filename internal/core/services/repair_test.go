package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

func TestRepairBraces(t *testing.T) {
	assert.Equal(t, `{"a":1}`, RepairBraces(`{"a":1}`))
	assert.Equal(t, `{"a":{"b":1}}`, RepairBraces(`{"a":{"b":1`))
	assert.Equal(t, `}}`, RepairBraces(`}}`))
}

func TestDecodeObject_BraceRepair(t *testing.T) {
	valid := `{"a":{"b":{"c":{"d":1}}}}`
	for k := 0; k <= 4; k++ {
		truncatedText := valid[:len(valid)-k]
		obj, err := DecodeObject(truncatedText)
		require.NoError(t, err, "k=%d", k)
		assert.Contains(t, obj, "a")
	}
}

func TestDecodeObject_CodeFenceAndPreamble(t *testing.T) {
	obj, err := DecodeObject("```json\n{\"documents\": []}\n```")
	require.NoError(t, err)
	assert.Contains(t, obj, "documents")

	obj, err = DecodeObject("Here is the result:\n{\"documents\": []}")
	require.NoError(t, err)
	assert.Contains(t, obj, "documents")
}

func TestDecodeObject_ParseFailure(t *testing.T) {
	for _, raw := range []string{"", "not json at all", `{"a": [1, 2`, `[1,2,3]`} {
		_, err := DecodeObject(raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, domain.ErrParseFailure)

		var pf *domain.ParseFailure
		require.True(t, errors.As(err, &pf))
		assert.Equal(t, raw, pf.RawText)
	}
}

func TestParseClassification(t *testing.T) {
	raw := `{
		"documents": [
			{"filename": "MSA.pdf", "role": "base", "execution_date": "2023-01-15", "effective_date": null, "amends": null, "confidence": 0.9},
			{"filename": "Amendment 1.pdf", "role": "amendment", "execution_date": "2023-06-01", "amends": "MSA.pdf"},
			"junk"
		],
		"chronological_order": ["MSA.pdf", "Amendment 1.pdf"]
	}`

	payload, err := ParseClassification(raw)
	require.NoError(t, err)
	require.Len(t, payload.Documents, 2)
	assert.Equal(t, "MSA.pdf", payload.Documents[0].Filename)
	assert.Equal(t, "base", payload.Documents[0].Role)
	assert.Equal(t, "2023-01-15", payload.Documents[0].ExecutionDate)
	assert.Empty(t, payload.Documents[0].EffectiveDate)
	assert.Empty(t, payload.Documents[0].Amends)
	assert.InDelta(t, 0.9, payload.Documents[0].Confidence, 0.0001)
	assert.Equal(t, "MSA.pdf", payload.Documents[1].Amends)
	assert.Equal(t, []string{"MSA.pdf", "Amendment 1.pdf"}, payload.ChronologicalOrder)
}

func TestParseClassification_Invalid(t *testing.T) {
	_, err := ParseClassification(`{"docs": []}`)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ParseClassification(`{"documents": "nope"}`)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ParseClassification(`garbage`)
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}

func TestParseMerge(t *testing.T) {
	raw := `{
		"base_summary": "Master agreement between A and B.",
		"amendment_summaries": [{"document": "Amendment 1.pdf", "role": "amendment", "changes": ["Extends term"]}],
		"clause_change_log": [{"section": "4.1", "change_type": "Modified", "old_text": "1 year", "new_text": "2 years", "summary": "Term"}],
		"final_contract": "Full text",
		"document_incorporation_log": ["MSA.pdf (base, 2023-01-15)", "Amendment 1.pdf (amendment, 2023-06-01)"]
	}`

	payload, err := ParseMerge(raw)
	require.NoError(t, err)
	assert.Equal(t, "Master agreement between A and B.", payload.BaseSummary)
	require.Len(t, payload.AmendmentSummaries, 1)
	assert.Equal(t, domain.RoleAmendment, payload.AmendmentSummaries[0].Role)
	assert.Equal(t, []string{"Extends term"}, payload.AmendmentSummaries[0].Changes)
	require.Len(t, payload.ClauseChangeLog, 1)
	assert.Equal(t, domain.ChangeModified, payload.ClauseChangeLog[0].ChangeType)
	assert.Equal(t, "Full text", payload.FinalContract)
	assert.True(t, payload.HasIncorporationLog)
	assert.Len(t, payload.DocumentIncorporationLog, 2)
}

func TestParseMerge_CoercesOptionalArrays(t *testing.T) {
	payload, err := ParseMerge(`{"base_summary": "S", "amendment_summaries": null, "clause_change_log": "x"}`)
	require.NoError(t, err)
	assert.NotNil(t, payload.AmendmentSummaries)
	assert.Empty(t, payload.AmendmentSummaries)
	assert.NotNil(t, payload.ClauseChangeLog)
	assert.Empty(t, payload.ClauseChangeLog)
	assert.NotNil(t, payload.DocumentIncorporationLog)
	assert.False(t, payload.HasIncorporationLog)
}

func TestParseMerge_RequiresBaseSummary(t *testing.T) {
	for _, raw := range []string{`{}`, `{"base_summary": ""}`, `{"base_summary": "   "}`, `{"base_summary": 3}`} {
		_, err := ParseMerge(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}

func TestParseMerge_TruncatedPayloadRepaired(t *testing.T) {
	raw := `{"base_summary": "S", "amendment_summaries": [{"document": "a", "changes": ["x"]`
	// Unbalanced brackets are not repaired, only braces.
	_, err := ParseMerge(raw)
	assert.ErrorIs(t, err, domain.ErrParseFailure)

	raw = `{"base_summary": "S", "final_contract": "text"`
	payload, err := ParseMerge(raw)
	require.NoError(t, err)
	assert.Equal(t, "text", payload.FinalContract)
	assert.Equal(t, "S", payload.BaseSummary)
}

func TestDecodeObject_PreambleFailureKeepsRawText(t *testing.T) {
	raw := "Sure, here it is:\n{\"documents\": [1, 2"
	_, err := DecodeObject(raw)

	var pf *domain.ParseFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, raw, pf.RawText)
}
