// Package storage defines the persistence ports the engine depends on.
//
// Implementations (e.g., SQLite) live in subpackages.
//
// Common error types:
//   - ErrNotFound: requested record is missing
//   - ErrVersionConflict: a save lost a compare-and-swap race
package storage
