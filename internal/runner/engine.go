package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwbudde/beecolony/internal/bench"
	"github.com/cwbudde/beecolony/internal/config"
	"github.com/cwbudde/beecolony/pkg/abc"
)

// engine hides whether a run searches real vectors or bit vectors.
type engine interface {
	fit(ctx context.Context) error
	best() abc.Solution
	binary() *abc.BinarySolution
	// cost is the figure of merit reported per round: the best continuous
	// cost, or the extracted cost of a binary run.
	cost() float64
	status() abc.Status
	state() (*abc.State, error)
}

// newEngine builds the colony described by run, restoring st when given.
func newEngine(run config.RunFile, logger *slog.Logger, st *abc.State) (engine, error) {
	switch run.Kind {
	case config.KindContinuous:
		fn, err := bench.Lookup(run.Problem)
		if err != nil {
			return nil, err
		}
		cfg, err := run.Config(logger)
		if err != nil {
			return nil, err
		}
		bounds := run.BoundsOverride()
		if bounds == nil {
			bounds = fn.Bounds(run.Dim)
		}
		var c *abc.Colony
		if st == nil {
			c, err = abc.New(fn.Eval, bounds, cfg)
		} else {
			c, err = abc.Restore(fn.Eval, bounds, cfg, st)
		}
		if err != nil {
			return nil, err
		}
		return &continuousEngine{c: c}, nil

	case config.KindBinary:
		fn, err := bench.LookupBinary(run.Problem)
		if err != nil {
			return nil, err
		}
		cfg, err := run.BinaryConfig(logger)
		if err != nil {
			return nil, err
		}
		var b *abc.BinaryColony
		if st == nil {
			b, err = abc.NewBinary(fn.Eval, cfg)
		} else {
			b, err = abc.RestoreBinary(fn.Eval, cfg, st)
		}
		if err != nil {
			return nil, err
		}
		return &binaryEngine{b: b}, nil

	default:
		return nil, &abc.ConfigError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", run.Kind)}
	}
}

type continuousEngine struct {
	c *abc.Colony
}

func (e *continuousEngine) fit(ctx context.Context) error {
	_, err := e.c.Fit(ctx)
	return err
}

func (e *continuousEngine) best() abc.Solution          { return e.c.Solution() }
func (e *continuousEngine) binary() *abc.BinarySolution { return nil }
func (e *continuousEngine) cost() float64               { return e.c.Solution().Cost }
func (e *continuousEngine) status() abc.Status          { return e.c.Status() }
func (e *continuousEngine) state() (*abc.State, error)  { return e.c.State() }

type binaryEngine struct {
	b *abc.BinaryColony
}

func (e *binaryEngine) fit(ctx context.Context) error {
	_, err := e.b.Fit(ctx)
	return err
}

func (e *binaryEngine) best() abc.Solution { return e.b.Colony().Solution() }

func (e *binaryEngine) binary() *abc.BinarySolution {
	sol := e.b.Solution()
	if sol.Samples == 0 {
		return nil
	}
	return &sol
}

func (e *binaryEngine) cost() float64 {
	if sol := e.binary(); sol != nil {
		return sol.Cost
	}
	return e.b.Colony().Solution().Cost
}

func (e *binaryEngine) status() abc.Status         { return e.b.Status() }
func (e *binaryEngine) state() (*abc.State, error) { return e.b.State() }
