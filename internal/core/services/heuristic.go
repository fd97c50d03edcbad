package services

import (
	"strings"
	"time"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

// BaseAgreementReference is the amends target assigned by the heuristic.
const BaseAgreementReference = "Base Agreement"

var (
	amendmentKeywords = []string{"amendment", "addendum", "modification"}
	baseKeywords      = []string{"agreement", "contract", "base"}
	ancillaryKeywords = []string{"rider", "schedule", "exhibit"}
)

// HeuristicClassify classifies a document from its filename alone.
// Both dates default to the day of now. Keyword groups are checked in order:
// amendment, base, ancillary; anything else is ancillary.
func HeuristicClassify(filename string, now time.Time) domain.Document {
	today := domain.Day(now)
	exec, eff := today, today

	doc := domain.Document{
		Filename:      filename,
		Role:          domain.RoleAncillary,
		ExecutionDate: &exec,
		EffectiveDate: &eff,
		Source:        domain.SourceHeuristic,
	}

	lower := strings.ToLower(filename)
	switch {
	case containsAny(lower, amendmentKeywords):
		doc.Role = domain.RoleAmendment
		doc.Amends = BaseAgreementReference
	case containsAny(lower, baseKeywords):
		doc.Role = domain.RoleBase
	case containsAny(lower, ancillaryKeywords):
		doc.Role = domain.RoleAncillary
	}
	return doc
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
