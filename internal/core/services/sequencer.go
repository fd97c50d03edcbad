package services

import (
	"sort"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

// Sequencer orders classified documents chronologically.
type Sequencer struct {
	matcher FilenameMatcher
}

// NewSequencer creates a sequencer. A nil matcher selects CascadeMatcher.
func NewSequencer(matcher FilenameMatcher) *Sequencer {
	if matcher == nil {
		matcher = CascadeMatcher{}
	}
	return &Sequencer{matcher: matcher}
}

// ComputedOrder sorts filenames by execution date, then effective date,
// then the epoch. The sort is stable, so ties keep input order.
func (s *Sequencer) ComputedOrder(docs []domain.Document) []string {
	sorted := make([]domain.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortDate().Before(sorted[j].SortDate())
	})

	order := make([]string, len(sorted))
	for i, d := range sorted {
		order[i] = d.Filename
	}
	return order
}

// Order returns the chronological order for docs.
//
// The generation service only sees documents with text, so a proposed
// order is used only when its names map one-to-one onto exactly those
// documents. Documents without text follow in computed order. A proposal
// that misses a document, repeats one or names something unknown is
// discarded and the computed order of all documents is returned.
func (s *Sequencer) Order(docs []domain.Document, proposed []string) []string {
	computed := s.ComputedOrder(docs)
	if len(proposed) == 0 {
		return computed
	}

	var sent []string
	for _, d := range docs {
		if d.HasText() {
			sent = append(sent, d.Filename)
		}
	}
	if len(proposed) != len(sent) {
		return computed
	}

	matches := claimMatches(s.matcher, sent, proposed)
	if len(matches) != len(sent) {
		return computed
	}

	order := make([]string, len(proposed), len(docs))
	for name, idx := range matches {
		order[idx] = name
	}
	for _, name := range computed {
		if _, ok := matches[name]; !ok {
			order = append(order, name)
		}
	}
	return order
}
