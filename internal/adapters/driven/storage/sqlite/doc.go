// Package sqlite provides a SQLite-backed credential store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It is intended for hosts
// that already keep app data in SQLite and want the credential in the same
// database file rather than a loose JSON file.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. The credential table holds at most one row.
//
// # Data Location
//
// By default, the database is stored at ~/.marksync/marksync.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
