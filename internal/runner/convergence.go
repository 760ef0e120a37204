package runner

import (
	"log/slog"
	"math"

	"github.com/cwbudde/beecolony/internal/config"
	"github.com/cwbudde/beecolony/pkg/abc"
)

// ConvergenceTracker watches the best cost after every round and reports
// when it has stalled for Patience rounds.
//
// Improvement is measured relative to the last significant cost, with the
// denominator floored at 1 so costs near zero are compared absolutely:
//
//	improvement = (last - cost) / max(|last|, 1)   (minimize, negated for maximize)
type ConvergenceTracker struct {
	config          config.Convergence
	direction       abc.Direction
	logger          *slog.Logger
	costHistory     []float64
	lastSignificant float64
	staleCount      int
}

// NewConvergenceTracker creates a tracker. Patience 0 disables it.
func NewConvergenceTracker(cfg config.Convergence, direction abc.Direction, logger *slog.Logger) *ConvergenceTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConvergenceTracker{
		config:          cfg,
		direction:       direction,
		logger:          logger,
		lastSignificant: math.NaN(),
	}
}

// Enabled reports whether the tracker can ever fire.
func (c *ConvergenceTracker) Enabled() bool {
	return c.config.Patience > 0
}

// Update records the best cost of a round and returns true once the run
// has converged.
func (c *ConvergenceTracker) Update(cost float64) bool {
	c.costHistory = append(c.costHistory, cost)
	if !c.Enabled() {
		return false
	}

	if math.IsNaN(c.lastSignificant) {
		if !math.IsNaN(cost) {
			c.lastSignificant = cost
			c.staleCount = 0
			return false
		}
	} else if improvement := c.improvement(cost); improvement > c.config.Threshold {
		c.lastSignificant = cost
		c.staleCount = 0
		c.logger.Debug("Cost improvement detected",
			"cost", cost,
			"improvement", improvement,
		)
		return false
	}

	c.staleCount++
	c.logger.Debug("No significant cost improvement",
		"cost", cost,
		"last_significant", c.lastSignificant,
		"stale_count", c.staleCount,
		"patience", c.config.Patience,
	)
	if c.staleCount >= c.config.Patience {
		c.logger.Info("Convergence detected - stopping early",
			"stale_count", c.staleCount,
			"patience", c.config.Patience,
			"best_cost", c.lastSignificant,
		)
		return true
	}
	return false
}

func (c *ConvergenceTracker) improvement(cost float64) float64 {
	if math.IsNaN(cost) {
		return math.Inf(-1)
	}
	delta := c.lastSignificant - cost
	if c.direction == abc.Maximize {
		delta = -delta
	}
	if math.IsInf(c.lastSignificant, 0) {
		// Leaving an infinite cost is always progress.
		if delta > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return delta / math.Max(math.Abs(c.lastSignificant), 1)
}

// History returns the best cost after every recorded round.
func (c *ConvergenceTracker) History() []float64 {
	return append([]float64{}, c.costHistory...)
}

// StaleCount returns the current number of rounds without improvement.
func (c *ConvergenceTracker) StaleCount() int {
	return c.staleCount
}
