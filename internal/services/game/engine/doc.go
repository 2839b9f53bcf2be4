// Package engine is the entry point for every session operation.
//
// Each call loads the session aggregate, validates it against the turn,
// movement and action point rules, computes the next aggregate with the
// domain packages and saves it with a version compare-and-swap. A lost
// race reloads and recomputes. Activity log and notification side effects
// run after the save and never fail the call.
package engine
