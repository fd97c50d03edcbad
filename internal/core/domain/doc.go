// Package domain defines the core business entities for lexmerge.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A project document with its classification
//   - ClassificationBatch: Classified documents plus their chronological order
//   - MergeResult: The merged contract and its change logs
//   - SourceText: Extracted text handed over by a text source
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
