// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TextSource: Delivers the extracted text of a project's documents
//   - ResultStore: Merge result persistence (the result cache contract)
//   - ClassificationStore: Classification batch persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - GenerationService: The external text-generation service. Without it,
//     classification uses the filename heuristic and merging uses the
//     deterministic metadata-only fallback.
//   - ProjectWatcher: Change notifications for project directories.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
