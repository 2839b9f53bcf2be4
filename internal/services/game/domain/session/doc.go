// Package session defines the per-session aggregate the engine loads,
// rewrites and saves as a unit.
//
// An Aggregate is the source of truth for characters, tokens, the map and
// encounter state. Version increases by one on every successful save and
// is the compare-and-swap key for concurrent writers.
package session
