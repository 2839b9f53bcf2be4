// Package turn is the initiative and turn scheduler.
//
// The state moves through NoEncounter, InitiativeRolled, TurnActive and
// TurnPaused. Order is the authority for who acts next; Active and Paused
// are never both set.
package turn
