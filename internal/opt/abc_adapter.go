package opt

import (
	"context"
	"fmt"

	"github.com/cwbudde/beecolony/pkg/abc"
)

// ABCAdapter runs a fresh colony for every Run call.
type ABCAdapter struct {
	cfg abc.Config
}

// NewABC creates an optimizer backed by an abc.Colony.
func NewABC(cfg abc.Config) Optimizer {
	return &ABCAdapter{cfg: cfg}
}

func (a *ABCAdapter) Name() string { return "abc" }

// Run builds the colony and calls Fit once.
func (a *ABCAdapter) Run(ctx context.Context, eval abc.CostFunc, bounds abc.Boundaries) (abc.Solution, error) {
	colony, err := abc.New(eval, bounds, a.cfg)
	if err != nil {
		return abc.Solution{}, fmt.Errorf("failed to create colony: %w", err)
	}
	return colony.Fit(ctx)
}
