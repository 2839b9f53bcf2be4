// Package grid holds the battle map and the movement rules that read it.
//
// Paths use 8-directional adjacency. Stepping onto a tile costs that tile's
// MovementCost, so entering difficult ground is what costs extra, not
// leaving it.
package grid
