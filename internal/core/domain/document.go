package domain

import (
	"strings"
	"time"
)

// Role classifies a document within a project.
type Role string

// Document roles.
const (
	// RoleBase is the original agreement.
	RoleBase Role = "base"

	// RoleAmendment modifies a base agreement.
	RoleAmendment Role = "amendment"

	// RoleAncillary is a supporting or unrelated document.
	RoleAncillary Role = "ancillary"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleBase, RoleAmendment, RoleAncillary:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// ParseRole normalises a role string. Unknown values map to RoleAncillary.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.IsValid() {
		return r
	}
	return RoleAncillary
}

// ClassificationSource records which path produced a document's classification.
type ClassificationSource string

// Classification sources.
const (
	// SourceGenerated means the role and dates came from the generative service.
	SourceGenerated ClassificationSource = "generated"

	// SourceHeuristic means the filename heuristic classified the document.
	SourceHeuristic ClassificationSource = "heuristic"
)

// SourceText is one document as delivered by a text source.
type SourceText struct {
	// Filename is unique within a project.
	Filename string

	// Text is the extracted plain text. Empty when extraction failed.
	Text string

	// ExtractionSucceeded is false when the text source could not read the file.
	ExtractionSucceeded bool

	// ExtractionError describes why extraction failed, if known.
	ExtractionError string
}

// HasText returns true if the document carries usable text.
func (s SourceText) HasText() bool {
	return strings.TrimSpace(s.Text) != ""
}

// Document is a project document with its classification.
// Classification fields live at the top level; there is no generic metadata map.
type Document struct {
	// Filename is unique within a batch.
	Filename string `json:"filename" yaml:"filename"`

	// Text is the extracted text. Empty when extraction failed.
	Text string `json:"text,omitempty" yaml:"-"`

	// Role is always one of base, amendment or ancillary.
	Role Role `json:"role" yaml:"role"`

	// ExecutionDate is when the document was signed.
	ExecutionDate *time.Time `json:"execution_date,omitempty" yaml:"execution_date,omitempty"`

	// EffectiveDate is when the document takes effect.
	EffectiveDate *time.Time `json:"effective_date,omitempty" yaml:"effective_date,omitempty"`

	// Amends references the document this one modifies. Empty for none.
	Amends string `json:"amends,omitempty" yaml:"amends,omitempty"`

	// Confidence is advisory only.
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// Source records which path classified the document.
	Source ClassificationSource `json:"source,omitempty" yaml:"source,omitempty"`

	// ExtractionError describes a failed text extraction.
	ExtractionError string `json:"extraction_error,omitempty" yaml:"extraction_error,omitempty"`
}

// HasText returns true if the document carries usable text.
func (d Document) HasText() bool {
	return strings.TrimSpace(d.Text) != ""
}

// SortDate returns the date used for chronological ordering:
// execution date, then effective date, then the zero time.
func (d Document) SortDate() time.Time {
	if d.ExecutionDate != nil {
		return *d.ExecutionDate
	}
	if d.EffectiveDate != nil {
		return *d.EffectiveDate
	}
	return time.Time{}
}

// DisplayDate formats the best known date of the document.
func (d Document) DisplayDate() string {
	t := d.SortDate()
	if t.IsZero() {
		return "undated"
	}
	return t.Format(DateLayout)
}

// DateLayout is the canonical date format used in requests and results.
const DateLayout = "2006-01-02"
