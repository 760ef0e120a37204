package abc

import (
	"fmt"
	"math/rand/v2"
)

// pcgStream is xored into the seed to derive the PCG stream selector.
const pcgStream = 0x9e3779b97f4a7c15

// Rand is the random source behind every stochastic step of a colony:
// initialization, partner and dimension choice, phi, roulette draws and
// Bernoulli bit sampling. It wraps a PCG generator so the full generator
// state can be saved with a checkpoint and restored later.
type Rand struct {
	src *rand.PCG
	r   *rand.Rand
}

// NewRand returns a deterministic source for the given seed.
func NewRand(seed uint64) *Rand {
	src := rand.NewPCG(seed, seed^pcgStream)
	return &Rand{src: src, r: rand.New(src)}
}

// newRandFromSeed seeds from the global generator when seed is nil.
func newRandFromSeed(seed *int64) *Rand {
	if seed == nil {
		return NewRand(rand.Uint64())
	}
	return NewRand(uint64(*seed))
}

// Float64 returns a uniform value in [0, 1).
func (r *Rand) Float64() float64 {
	return r.r.Float64()
}

// Uniform returns a uniform value in [lo, hi).
func (r *Rand) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*r.r.Float64()
}

// IntN returns a uniform index in [0, n).
func (r *Rand) IntN(n int) int {
	return r.r.IntN(n)
}

// Partner returns a uniform index in [0, n) that differs from i.
// It always consumes exactly one draw. n must be at least 2.
func (r *Rand) Partner(i, n int) int {
	k := r.r.IntN(n - 1)
	if k >= i {
		k++
	}
	return k
}

// MarshalBinary captures the generator state.
func (r *Rand) MarshalBinary() ([]byte, error) {
	return r.src.MarshalBinary()
}

// UnmarshalBinary restores a state produced by MarshalBinary.
func (r *Rand) UnmarshalBinary(data []byte) error {
	if r.src == nil {
		r.src = rand.NewPCG(0, 0)
		r.r = rand.New(r.src)
	}
	if err := r.src.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("failed to restore random state: %w", err)
	}
	return nil
}
