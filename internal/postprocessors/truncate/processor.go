// Package truncate provides a processor that caps document length.
package truncate

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxChars is the default number of characters kept per document.
const DefaultMaxChars = 200_000

// Processor cuts text after a maximum number of characters and appends a
// marker so the truncation is visible in the analysis.
// It implements the PostProcessor interface.
type Processor struct {
	maxChars int
}

// Option configures the truncate processor.
type Option func(*Processor)

// WithMaxChars sets the character limit.
func WithMaxChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChars = n
		}
	}
}

// New creates a new truncate processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{maxChars: DefaultMaxChars}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "truncate"
}

// Process truncates on a rune boundary.
func (p *Processor) Process(_ context.Context, _, text string) (string, error) {
	if utf8.RuneCountInString(text) <= p.maxChars {
		return text, nil
	}

	count := 0
	for i := range text {
		if count == p.maxChars {
			return text[:i] + fmt.Sprintf("\n[truncated after %d characters]", p.maxChars), nil
		}
		count++
	}
	return text, nil
}
