package opt

import (
	"context"

	"github.com/cwbudde/beecolony/pkg/abc"
)

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Name identifies the algorithm in comparisons and traces.
	Name() string

	// Run minimizes (or maximizes, where supported) eval over bounds.
	// Returns the best position and its cost.
	Run(ctx context.Context, eval abc.CostFunc, bounds abc.Boundaries) (abc.Solution, error)
}
