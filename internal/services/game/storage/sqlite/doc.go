// Package sqlite implements the storage ports on SQLite.
//
// Each session is one row holding the aggregate as JSON plus a version
// column used for compare-and-swap saves. Character and token rows are
// projections rewritten in the same transaction as the aggregate; readers
// outside the engine may query them, the engine never does.
package sqlite
