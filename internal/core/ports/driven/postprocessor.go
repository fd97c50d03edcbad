package driven

import "context"

// PostProcessor cleans up extracted text before it is sent for analysis.
type PostProcessor interface {
	// Name identifies the processor in configuration and errors.
	Name() string

	// Process returns the transformed text.
	Process(ctx context.Context, filename, text string) (string, error)
}
