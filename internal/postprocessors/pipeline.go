// Package postprocessors provides text clean-up stages run after extraction.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/logger"
)

// Pipeline runs extracted document text through PostProcessors in order.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a pipeline. Processors run in the order given.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process runs a document's text through every stage. Empty text is
// returned as is, since it marks a failed extraction rather than content.
func (p *Pipeline) Process(ctx context.Context, filename, text string) (string, error) {
	if text == "" {
		return text, nil
	}
	for _, processor := range p.processors {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		before := len(text)
		var err error
		text, err = processor.Process(ctx, filename, text)
		if err != nil {
			return "", fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
		if len(text) != before {
			logger.Debug("%s: %s %d -> %d bytes", filename, processor.Name(), before, len(text))
		}
	}
	return text, nil
}

// Add appends a stage.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Names lists the stages in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, processor := range p.processors {
		names[i] = processor.Name()
	}
	return names
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
