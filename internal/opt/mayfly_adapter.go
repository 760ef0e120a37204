package opt

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/beecolony/pkg/abc"
)

// MinMayflyPopulation is the smallest population mayfly v0.1.0 accepts.
const MinMayflyPopulation = 20

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface
type MayflyAdapter struct {
	maxIters  int
	popSize   int
	seed      int64
	direction abc.Direction
}

// NewMayfly creates a new Mayfly optimizer adapter
func NewMayfly(maxIters, popSize int, seed int64, direction abc.Direction) Optimizer {
	return &MayflyAdapter{
		maxIters:  maxIters,
		popSize:   popSize,
		seed:      seed,
		direction: direction,
	}
}

func (m *MayflyAdapter) Name() string { return "mayfly" }

// Run executes the Mayfly optimization using the external library.
//
// The library only takes one scalar bound pair, so the search runs in the
// unit cube and positions are mapped onto the per-coordinate box before
// every evaluation. Maximization negates the cost.
func (m *MayflyAdapter) Run(ctx context.Context, eval abc.CostFunc, bounds abc.Boundaries) (abc.Solution, error) {
	if err := bounds.Validate(); err != nil {
		return abc.Solution{}, err
	}
	if m.popSize < MinMayflyPopulation {
		return abc.Solution{}, &abc.ConfigError{
			Field:  "PopSize",
			Reason: fmt.Sprintf("mayfly needs at least %d, got %d", MinMayflyPopulation, m.popSize),
		}
	}
	if err := ctx.Err(); err != nil {
		return abc.Solution{}, fmt.Errorf("mayfly run not started: %w", err)
	}

	sign := 1.0
	if m.direction == abc.Maximize {
		sign = -1
	}
	scaled := func(u []float64) float64 {
		return sign * eval(scale(u, bounds))
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = scaled
	config.ProblemSize = bounds.Dim()
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = 0
	config.UpperBound = 1

	// Set random seed for reproducibility
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return abc.Solution{}, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	return abc.Solution{
		Position: scale(result.GlobalBest.Position, bounds),
		Cost:     sign * result.GlobalBest.Cost,
	}, nil
}

// scale maps a unit-cube point onto bounds, clamping stray coordinates.
func scale(u []float64, bounds abc.Boundaries) []float64 {
	x := make([]float64, len(u))
	for d, v := range u {
		b := bounds[d]
		x[d] = bounds.Clamp(d, b.Lower+v*(b.Upper-b.Lower))
	}
	return x
}
