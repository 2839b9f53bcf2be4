// Package actor models the two kinds of combatant on the table, player
// characters and map tokens, behind one Actor capability interface.
//
// Every health and action point mutation goes through a clamping setter so
// 0 <= value <= maximum holds for both variants.
package actor
