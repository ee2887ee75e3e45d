package solver

import (
	"math/rand/v2"
	"time"
)

// NewRand returns a generator seeded with seed, or from the clock when seed is 0.
// Each solve owns its generator, so concurrent runs never share random state.
func NewRand(seed int64) *rand.Rand {
	s := uint64(seed)
	if seed == 0 {
		s = uint64(time.Now().UnixNano())
	}

	return rand.New(rand.NewPCG(s, s>>1|1))
}
