// Package whitespace provides a processor that tidies extracted text.
package whitespace

import (
	"context"
	"regexp"
	"strings"
)

// DefaultMaxBlankLines is the number of blank lines kept between paragraphs.
const DefaultMaxBlankLines = 1

// wideGaps matches runs of spaces left by layout-preserving extractors.
var wideGaps = regexp.MustCompile(` {3,}`)

// Processor collapses wide space runs and long blank-line runs.
// It implements the PostProcessor interface.
type Processor struct {
	maxBlankLines int
}

// Option configures the whitespace processor.
type Option func(*Processor)

// WithMaxBlankLines sets how many consecutive blank lines are kept.
func WithMaxBlankLines(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.maxBlankLines = n
		}
	}
}

// New creates a new whitespace processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{maxBlankLines: DefaultMaxBlankLines}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "whitespace"
}

// Process collapses whitespace. Leading indentation is kept.
func (p *Processor) Process(_ context.Context, _, text string) (string, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := 0

	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			blank++
			if blank > p.maxBlankLines {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0

		indent := len(trimmed) - len(strings.TrimLeft(trimmed, " \t"))
		out = append(out, trimmed[:indent]+wideGaps.ReplaceAllString(trimmed[indent:], "  "))
	}

	return strings.TrimSpace(strings.Join(out, "\n")), nil
}
