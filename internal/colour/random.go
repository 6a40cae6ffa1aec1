package colour

import (
	"math/rand/v2"
	"sync"
)

// RandomSource supplies the uniform draws used to seed centroids.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// IntN returns a uniform value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// NewRandomSource returns a deterministic source for the given seed.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// globalSource is the process-wide generator used when no source is injected.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// lockedSource serialises access to a non-concurrent source so one seeded
// generator can be shared by several extractions.
type lockedSource struct {
	mu  sync.Mutex
	src RandomSource
}

func (l *lockedSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}
