// Package random produces seeds for the deterministic dice sources.
//
// Seeds come from crypto/rand so live play is unpredictable, while a
// recorded seed replays the same rolls.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// SeedFunc returns a seed for one resolution.
type SeedFunc func() (int64, error)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Fixed returns a SeedFunc that always yields seed.
func Fixed(seed int64) SeedFunc {
	return func() (int64, error) {
		return seed, nil
	}
}
