package postprocessors

import (
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/postprocessors/truncate"
	"github.com/custodia-labs/lexmerge/internal/postprocessors/whitespace"
)

// DefaultOrder is the processor order used when none is configured.
var DefaultOrder = []string{"whitespace", "truncate"}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("whitespace", buildWhitespace)
	r.Register("truncate", buildTruncate)
}

// BuildPipeline builds a pipeline from processor names and per-processor config.
func BuildPipeline(r *Registry, names []string, cfg map[string]map[string]any) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range names {
		processor, err := r.Build(name, cfg[name])
		if err != nil {
			return nil, err
		}
		p.Add(processor)
	}
	return p, nil
}

// buildWhitespace creates a whitespace processor from generic config.
// Supported config keys:
//   - max_blank_lines (int): Blank lines kept between paragraphs (default: 1)
func buildWhitespace(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []whitespace.Option
	if _, ok := cfg["max_blank_lines"]; ok {
		opts = append(opts, whitespace.WithMaxBlankLines(getIntFromConfig(cfg, "max_blank_lines")))
	}
	return whitespace.New(opts...), nil
}

// buildTruncate creates a truncate processor from generic config.
// Supported config keys:
//   - max_chars (int): Characters kept per document (default: 200000)
func buildTruncate(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []truncate.Option
	if size := getIntFromConfig(cfg, "max_chars"); size > 0 {
		opts = append(opts, truncate.WithMaxChars(size))
	}
	return truncate.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
