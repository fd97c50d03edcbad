package driven

import "context"

// Normaliser extracts plain text from a document's bytes.
// Each normaliser handles specific file extensions (e.g., .pdf, .docx).
type Normaliser interface {
	// SupportedExtensions returns the lower-case extensions handled, including the dot.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Extract returns the document text.
	Extract(ctx context.Context, filename string, content []byte) (string, error)
}
