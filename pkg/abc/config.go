package abc

import (
	"fmt"
	"log/slog"
	"math"
)

// Weighting selects how onlooker selection probabilities are derived from fitness.
type Weighting int

const (
	// Proportional uses fit_i / sum(fit).
	Proportional Weighting = iota
	// Scaled uses 0.9*fit_i/max(fit) + 0.1 before normalizing (Huang, 2015).
	Scaled
)

// ParseWeighting accepts "proportional" or "scaled".
func ParseWeighting(s string) (Weighting, error) {
	switch s {
	case "proportional", "":
		return Proportional, nil
	case "scaled":
		return Scaled, nil
	default:
		return 0, &ConfigError{Field: "Weighting", Reason: fmt.Sprintf("unknown token %q (want proportional or scaled)", s)}
	}
}

func (w Weighting) String() string {
	switch w {
	case Proportional:
		return "proportional"
	case Scaled:
		return "scaled"
	default:
		return fmt.Sprintf("Weighting(%d)", int(w))
	}
}

// Config is captured when a colony is built and never changes afterwards.
type Config struct {
	// ColonySize is the number of bees. Half of it are employed bees, one
	// per food source, and half are onlookers.
	ColonySize int

	// Scouts derives the abandonment limit, see ScoutLimit.
	Scouts float64

	// Iterations is the number of loop iterations each Fit call runs.
	Iterations int

	Direction Direction

	// NaNProtection redraws food sources whose cost is NaN during
	// initialization and scout events.
	NaNProtection bool

	// MaxNaNRetries caps the redraws per food source. Zero means unbounded,
	// which loops forever when the whole domain evaluates to NaN.
	MaxNaNRetries int

	// LogAgents records the food-source positions at the start of every iteration.
	LogAgents bool

	// Seed makes runs reproducible. Nil seeds from the global generator.
	Seed *int64

	Weighting Weighting

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the stock parameters: 40 bees, scouts 0.5,
// 50 iterations, minimization with NaN protection.
func DefaultConfig() Config {
	return Config{
		ColonySize:    40,
		Scouts:        0.5,
		Iterations:    50,
		Direction:     Minimize,
		NaNProtection: true,
	}
}

// Seed returns a pointer to v for Config.Seed.
func Seed(v int64) *int64 {
	return &v
}

// FoodSources returns the population size, ColonySize/2.
func (c Config) FoodSources() int {
	return c.ColonySize / 2
}

// ScoutLimit derives the trial limit for a problem of dimension dim:
//
//	Scouts == 0      -> ColonySize * dim
//	0 < Scouts < 1   -> floor(ColonySize * dim * Scouts)
//	Scouts >= 1      -> floor(Scouts)
//
// A food source is abandoned once its trial counter exceeds the limit, so
// a limit at or above the iteration budget never fires within one Fit call.
func (c Config) ScoutLimit(dim int) int {
	switch {
	case c.Scouts == 0:
		return c.ColonySize * dim
	case c.Scouts < 1:
		return int(math.Floor(float64(c.ColonySize*dim) * c.Scouts))
	default:
		return int(math.Floor(c.Scouts))
	}
}

// Validate rejects parameters that cannot drive a colony. Nothing is coerced.
func (c Config) Validate() error {
	if c.ColonySize < 4 {
		return &ConfigError{Field: "ColonySize", Reason: fmt.Sprintf("must be at least 4, got %d", c.ColonySize)}
	}
	if c.ColonySize%2 != 0 {
		return &ConfigError{Field: "ColonySize", Reason: fmt.Sprintf("must be even, got %d", c.ColonySize)}
	}
	if math.IsNaN(c.Scouts) || math.IsInf(c.Scouts, 0) || c.Scouts < 0 {
		return &ConfigError{Field: "Scouts", Reason: fmt.Sprintf("must be a finite value >= 0, got %g", c.Scouts)}
	}
	if c.Iterations < 1 {
		return &ConfigError{Field: "Iterations", Reason: fmt.Sprintf("must be at least 1, got %d", c.Iterations)}
	}
	if !c.Direction.valid() {
		return &ConfigError{Field: "Direction", Reason: "must be Minimize or Maximize"}
	}
	if c.MaxNaNRetries < 0 {
		return &ConfigError{Field: "MaxNaNRetries", Reason: "cannot be negative"}
	}
	if c.Weighting != Proportional && c.Weighting != Scaled {
		return &ConfigError{Field: "Weighting", Reason: "must be Proportional or Scaled"}
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
