package engine

import "math/rand"

// RNG is the interpreter's injectable source of randomness for §4.8's
// uniform random successor selection. Tests supply a deterministic RNG;
// production runs derive a seed per internal/config's rules.
type RNG interface {
	Intn(n int) int
}

type mathRandRNG struct {
	r *rand.Rand
}

// NewSeededRNG returns a production RNG seeded deterministically, so the
// same seed always produces the same sequence of branch choices.
func NewSeededRNG(seed int64) RNG {
	return &mathRandRNG{r: rand.New(rand.NewSource(seed))}
}

func (m *mathRandRNG) Intn(n int) int { return m.r.Intn(n) }
