// Package random provides seed generation and the seeded source used by
// sessions.
//
// Sessions draw every probabilistic outcome from a single *rand.Rand built
// from one seed, so a session created with the same seed and driven by the
// same operations resolves identically.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source is the subset of *rand.Rand the engine draws from.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// New returns a deterministic source for seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
