// Package sqlite provides the SQLite-backed invoice store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Invoices are stored as JSON documents
// (see package record) keyed by owner and ID.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.finvoice/data/invoices.db
//
// # Live Updates
//
// Writes made through a Store notify its subscribers directly. Watch adds a
// file watcher so writes made by other processes sharing the database file
// are delivered as well.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
