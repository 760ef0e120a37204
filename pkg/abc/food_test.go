package abc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sumOf(p []float64) float64 {
	var s float64
	for _, v := range p {
		s += v
	}
	return s
}

func TestPopulationProbabilities(t *testing.T) {
	pop := Population{
		{Fitness: 1},
		{Fitness: 3},
		{Fitness: math.NaN()},
		{Fitness: 4},
	}

	probs := pop.Probabilities(Proportional)
	assert.InDelta(t, 1.0, sumOf(probs), 1e-12)
	assert.InDelta(t, 0.125, probs[0], 1e-12)
	assert.InDelta(t, 0.375, probs[1], 1e-12)
	assert.Equal(t, 0.0, probs[2])
	assert.InDelta(t, 0.5, probs[3], 1e-12)

	scaled := pop.Probabilities(Scaled)
	assert.InDelta(t, 1.0, sumOf(scaled), 1e-12)
	assert.Equal(t, 0.0, scaled[2])
	assert.Greater(t, scaled[3], scaled[1])
	assert.Greater(t, scaled[1], scaled[0])
}

func TestPopulationProbabilitiesDegenerate(t *testing.T) {
	allNaN := Population{{Fitness: math.NaN()}, {Fitness: math.NaN()}}
	probs := allNaN.Probabilities(Proportional)
	assert.Equal(t, []float64{0.5, 0.5}, probs)

	negative := Population{{Fitness: -2}, {Fitness: -1}, {Fitness: 0}}
	probs = negative.Probabilities(Proportional)
	assert.InDelta(t, 1.0, sumOf(probs), 1e-12)
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
	}

	inf := Population{{Fitness: 1}, {Fitness: math.Inf(1)}}
	assert.Equal(t, []float64{0, 1}, inf.Probabilities(Proportional))
}

func TestPopulationBest(t *testing.T) {
	pop := Population{{Fitness: math.NaN()}, {Fitness: 2}, {Fitness: 5}, {Fitness: 5}}
	assert.Equal(t, 2, pop.Best())

	assert.Equal(t, 0, Population{{Fitness: math.NaN()}}.Best())
}

func TestRouletteFollowsProbabilities(t *testing.T) {
	r := NewRand(11)
	probs := []float64{0.1, 0, 0.6, 0.3}
	counts := make([]int, len(probs))

	const draws = 20000
	for i := 0; i < draws; i++ {
		counts[roulette(probs, r)]++
	}

	assert.Zero(t, counts[1], "zero-probability slot must never be drawn")
	for i, p := range probs {
		assert.InDelta(t, p, float64(counts[i])/draws, 0.02, "slot %d", i)
	}
}

func TestRandPartner(t *testing.T) {
	r := NewRand(3)
	for n := 2; n < 6; n++ {
		for i := 0; i < n; i++ {
			for j := 0; j < 50; j++ {
				k := r.Partner(i, n)
				assert.NotEqual(t, i, k)
				assert.True(t, k >= 0 && k < n)
			}
		}
	}
}

func TestRandStateRoundTrip(t *testing.T) {
	a := NewRand(99)
	a.Float64()
	a.IntN(10)

	data, err := a.MarshalBinary()
	assert.NoError(t, err)

	b := &Rand{}
	assert.NoError(t, b.UnmarshalBinary(data))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}
