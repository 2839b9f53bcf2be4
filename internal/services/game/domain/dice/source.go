package dice

import "math/rand"

// Source supplies uniform integers in [0, n).
type Source interface {
	Intn(n int) int
}

// NewSource returns a deterministic Source seeded with seed.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Sequence replays fixed die faces in order, cycling when exhausted.
// Faces are clamped into [1, n] for the requested die.
type Sequence struct {
	faces []int
	next  int
}

// NewSequence returns a Source that yields the given faces.
func NewSequence(faces ...int) *Sequence {
	return &Sequence{faces: faces}
}

// Intn implements Source.
func (s *Sequence) Intn(n int) int {
	if len(s.faces) == 0 || n <= 0 {
		return 0
	}
	face := s.faces[s.next%len(s.faces)]
	s.next++
	if face < 1 {
		face = 1
	}
	if face > n {
		face = n
	}
	return face - 1
}
