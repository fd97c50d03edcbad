package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/normalisers/docx"
	"github.com/custodia-labs/lexmerge/internal/normalisers/eml"
	"github.com/custodia-labs/lexmerge/internal/normalisers/html"
	"github.com/custodia-labs/lexmerge/internal/normalisers/markdown"
	"github.com/custodia-labs/lexmerge/internal/normalisers/pdf"
	"github.com/custodia-labs/lexmerge/internal/normalisers/plaintext"
)

// Registry dispatches extraction to the highest priority normaliser
// registered for a file's extension.
type Registry struct {
	byExt map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string][]driven.Normaliser)}
}

// Default returns a registry with every built-in normaliser.
func Default() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(eml.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	return r
}

// Register adds a normaliser for each of its extensions.
func (r *Registry) Register(n driven.Normaliser) {
	for _, ext := range n.SupportedExtensions() {
		ext = strings.ToLower(ext)
		list := append(r.byExt[ext], n)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority() > list[j].Priority() })
		r.byExt[ext] = list
	}
}

// Supports reports whether any normaliser handles the file.
func (r *Registry) Supports(filename string) bool {
	return len(r.byExt[strings.ToLower(filepath.Ext(filename))]) > 0
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract runs the preferred normaliser for the file's extension.
func (r *Registry) Extract(ctx context.Context, filename string, content []byte) (string, error) {
	list := r.byExt[strings.ToLower(filepath.Ext(filename))]
	if len(list) == 0 {
		return "", fmt.Errorf("%w: no normaliser for %s", domain.ErrUnsupportedType, filename)
	}
	return list[0].Extract(ctx, filename, content)
}
