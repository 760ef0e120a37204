package abc

import "math"

// FoodSource is one candidate solution. Fitness is the transformed cost,
// higher is better regardless of direction; Cost is the raw value.
type FoodSource struct {
	Position []float64
	Cost     float64
	Fitness  float64
	// Trials counts consecutive iterations without improvement.
	Trials int
}

func (f FoodSource) clone() FoodSource {
	f.Position = append([]float64(nil), f.Position...)
	return f
}

// Population is the fixed-size set of food sources, one per employed bee.
type Population []FoodSource

// Best returns the index with the highest fitness. NaN members are skipped;
// when every member is NaN it returns 0.
func (p Population) Best() int {
	best := -1
	for i, f := range p {
		if math.IsNaN(f.Fitness) {
			continue
		}
		if best < 0 || f.Fitness > p[best].Fitness {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// Positions copies every position, in slot order.
func (p Population) Positions() [][]float64 {
	out := make([][]float64, len(p))
	for i, f := range p {
		out[i] = append([]float64(nil), f.Position...)
	}
	return out
}

// Probabilities returns onlooker selection probabilities summing to 1.
// NaN members get weight 0. Negative weights are shifted up to zero, and a
// degenerate total falls back to a uniform choice.
func (p Population) Probabilities(w Weighting) []float64 {
	weights := make([]float64, len(p))
	maxFit := math.Inf(-1)
	minFit := math.Inf(1)
	for _, f := range p {
		if math.IsNaN(f.Fitness) {
			continue
		}
		maxFit = math.Max(maxFit, f.Fitness)
		minFit = math.Min(minFit, f.Fitness)
	}

	// +Inf fitness (a -Inf cost under minimization) dominates everything else.
	if math.IsInf(maxFit, 1) {
		for i, f := range p {
			if math.IsInf(f.Fitness, 1) {
				weights[i] = 1
			}
		}
		return normalize(weights)
	}

	shift := 0.0
	if minFit < 0 {
		shift = -minFit
	}
	for i, f := range p {
		if math.IsNaN(f.Fitness) {
			continue
		}
		v := f.Fitness + shift
		if w == Scaled && maxFit+shift > 0 {
			v = 0.9*v/(maxFit+shift) + 0.1
		}
		weights[i] = v
	}
	return normalize(weights)
}

func normalize(weights []float64) []float64 {
	var sum float64
	for _, v := range weights {
		sum += v
	}
	if sum <= 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		for i := range weights {
			weights[i] = 1 / float64(len(weights))
		}
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// roulette draws an index with the given probabilities.
func roulette(probs []float64, r *Rand) int {
	u := r.Float64()
	var acc float64
	last := 0
	for i, pr := range probs {
		if pr <= 0 {
			continue
		}
		acc += pr
		last = i
		if u < acc {
			return i
		}
	}
	// Rounding can leave acc just below 1.
	return last
}
