package domain

import (
	"strings"
	"time"
)

// ChangeType is the kind of clause-level change.
type ChangeType string

// Clause change types.
const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// ParseChangeType normalises a change type. Unknown values map to ChangeModified.
func ParseChangeType(s string) ChangeType {
	c := ChangeType(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ChangeAdded, ChangeModified, ChangeDeleted:
		return c
	default:
		return ChangeModified
	}
}

// AmendmentSummary lists the changes one document makes.
type AmendmentSummary struct {
	Document string   `json:"document" yaml:"document"`
	Role     Role     `json:"role" yaml:"role"`
	Changes  []string `json:"changes" yaml:"changes"`
}

// ClauseChange is a section-level diff between the base and an amendment.
type ClauseChange struct {
	Section    string     `json:"section" yaml:"section"`
	ChangeType ChangeType `json:"change_type" yaml:"change_type"`
	OldText    string     `json:"old_text" yaml:"old_text"`
	NewText    string     `json:"new_text" yaml:"new_text"`
	Summary    string     `json:"summary" yaml:"summary"`
}

// MergeResult is the merged contract for a project.
// It is immutable once persisted; a later merge produces a new result.
type MergeResult struct {
	// ID uniquely identifies this result.
	ID string `json:"id" yaml:"id"`

	// ProjectID is the project the result belongs to.
	ProjectID string `json:"project_id" yaml:"project_id"`

	BaseSummary        string             `json:"base_summary" yaml:"base_summary"`
	AmendmentSummaries []AmendmentSummary `json:"amendment_summaries" yaml:"amendment_summaries"`
	ClauseChangeLog    []ClauseChange     `json:"clause_change_log" yaml:"clause_change_log"`
	FinalContract      string             `json:"final_contract" yaml:"final_contract"`

	// DocumentIncorporationLog has exactly one line per project document.
	DocumentIncorporationLog []string `json:"document_incorporation_log" yaml:"document_incorporation_log"`

	// Fallback is true when the result was synthesised from metadata only.
	Fallback bool `json:"fallback" yaml:"fallback"`

	// CreatedAt is when the result was produced.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
