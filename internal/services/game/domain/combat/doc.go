// Package combat resolves attacks, spells, checks and direct damage against
// actor.Actor values.
//
// Each action runs validate, roll, apply, report. Validation failures
// return before any die is rolled and before action points move.
package combat
