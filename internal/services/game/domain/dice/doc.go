// Package dice holds the pure roll primitives used by the combat and turn
// rules: single dice, NdS+M notation, damage rolls with critical modes, and
// d20 rolls with advantage.
//
// Every function draws from an injected Source, so a seeded source replays
// identical results.
package dice
