// Package sqlite provides a SQLite-based implementation of the result and
// classification stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share one database connection:
//
//   - ResultStore: append-only merge results; the newest row is the cached result
//   - ClassificationStore: the latest classification batch per project
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// Stored documents use top-level classification fields. Rows written with the
// older nested "metadata" object are still read.
//
// # Data Location
//
// By default, the database is stored at ~/.lexmerge/data/lexmerge.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
