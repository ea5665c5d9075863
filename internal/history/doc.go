// Package history records download runs in SQLite so earlier runs can be
// listed and already-downloaded recordings skipped.
//
// Each run stores the course, timing, and a summary; each download stores
// the recording key, filename, outcome, and size. Schema changes bump
// schemaVersion in schema.go; older databases are rejected with
// ErrSchemaMismatch and must be removed.
package history
