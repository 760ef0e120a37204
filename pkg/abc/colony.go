package abc

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// CostFunc evaluates a position. It may return NaN; panics are not recovered.
type CostFunc func(x []float64) float64

// Solution is the best food source found, in caller units.
type Solution struct {
	Position []float64 `json:"position"`
	Cost     float64   `json:"cost"`
}

// Colony runs the Artificial Bee Colony search over a box-bounded real domain.
// State persists between Fit calls, so a second Fit continues from the
// current population. A Colony is not safe for concurrent use.
type Colony struct {
	cfg        Config
	cost       CostFunc
	bounds     Boundaries
	rng        *Rand
	guard      nanGuard
	scoutLimit int
	logger     *slog.Logger

	foods  Population
	best   FoodSource
	status Status
	agents AgentLog
}

// New validates the configuration and initializes the population.
// Every food source is evaluated once before New returns.
func New(cost CostFunc, bounds Boundaries, cfg Config) (*Colony, error) {
	if err := validate(cost, bounds, cfg); err != nil {
		return nil, err
	}
	c := newColony(cost, bounds, cfg, continuousGuard(cfg), newRandFromSeed(cfg.Seed))
	c.initialize()
	return c, nil
}

func validate(cost CostFunc, bounds Boundaries, cfg Config) error {
	if cost == nil {
		return &ConfigError{Field: "CostFunc", Reason: "cannot be nil"}
	}
	if err := bounds.Validate(); err != nil {
		return err
	}
	return cfg.Validate()
}

func continuousGuard(cfg Config) nanGuard {
	if !cfg.NaNProtection {
		return nanGuard{mode: nanOff}
	}
	return nanGuard{mode: nanRedraw, limit: cfg.MaxNaNRetries}
}

func newColony(cost CostFunc, bounds Boundaries, cfg Config, guard nanGuard, rng *Rand) *Colony {
	bounds = bounds.clone()
	return &Colony{
		cfg:        cfg,
		cost:       cost,
		bounds:     bounds,
		rng:        rng,
		guard:      guard,
		scoutLimit: cfg.ScoutLimit(bounds.Dim()),
		logger:     cfg.logger(),
	}
}

func (c *Colony) initialize() {
	c.foods = make(Population, c.cfg.FoodSources())
	for i := range c.foods {
		c.foods[i] = c.spawn()
	}
	c.best = c.foods[c.foods.Best()].clone()
	if math.IsNaN(c.best.Cost) {
		c.logger.Warn("Every initial food source evaluated to NaN; enable NaN protection or check the cost function",
			"food_sources", len(c.foods),
			"nan_protection", c.guard.mode != nanOff,
		)
	}

	c.logger.Debug("Colony initialized",
		"food_sources", len(c.foods),
		"dim", c.bounds.Dim(),
		"scout_limit", c.scoutLimit,
		"best_cost", c.best.Cost,
	)
}

// Fit runs cfg.Iterations more iterations and returns the best solution.
// The context is checked between iterations only.
func (c *Colony) Fit(ctx context.Context) (Solution, error) {
	for it := 0; it < c.cfg.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			return c.Solution(), fmt.Errorf("fit stopped after %d of %d iterations: %w", it, c.cfg.Iterations, err)
		}
		c.iterate()
	}

	c.logger.Debug("Fit complete",
		"iterations", c.status.Iterations,
		"scout_events", c.status.ScoutEvents,
		"nan_events", c.status.NaNEvents,
		"best_cost", c.best.Cost,
	)
	return c.Solution(), nil
}

// iterate runs the employed, onlooker and scout phases once.
func (c *Colony) iterate() {
	var snapshot [][]float64
	if c.cfg.LogAgents {
		snapshot = c.foods.Positions()
	}

	improved := make([]bool, len(c.foods))

	for i := range c.foods {
		if c.dance(i) {
			improved[i] = true
		}
	}

	probs := c.foods.Probabilities(c.cfg.Weighting)
	for n := 0; n < len(c.foods); n++ {
		i := roulette(probs, c.rng)
		if c.dance(i) {
			improved[i] = true
		}
	}

	for i := range c.foods {
		if improved[i] {
			c.foods[i].Trials = 0
		} else {
			c.foods[i].Trials++
		}
	}

	for i := range c.foods {
		if c.foods[i].Trials <= c.scoutLimit {
			continue
		}
		c.logger.Debug("Scout event",
			"iteration", c.status.Iterations+1,
			"slot", i,
			"trials", c.foods[i].Trials,
			"cost", c.foods[i].Cost,
		)
		c.foods[i] = c.spawn()
		c.consider(c.foods[i])
		c.status.ScoutEvents++
	}

	if snapshot != nil {
		c.agents.append(snapshot)
	}
	c.status.Iterations++
}

// dance perturbs one dimension of food source i toward or away from a random
// partner and keeps the candidate when it is at least as fit.
func (c *Colony) dance(i int) bool {
	k := c.rng.Partner(i, len(c.foods))
	d := c.rng.IntN(c.bounds.Dim())
	phi := c.rng.Uniform(-1, 1)

	cur := &c.foods[i]
	candidate := append([]float64(nil), cur.Position...)
	candidate[d] = c.bounds.Clamp(d, cur.Position[d]+phi*(cur.Position[d]-c.foods[k].Position[d]))

	cost := c.measure(candidate)
	fit := c.cfg.Direction.fitness(cost)
	if !c.cfg.Direction.accepts(cost, fit, cur.Cost, cur.Fitness) {
		return false
	}

	cur.Position = candidate
	cur.Cost = cost
	cur.Fitness = fit
	c.consider(*cur)
	return true
}

// consider replaces the cached best when f is strictly better.
func (c *Colony) consider(f FoodSource) {
	if c.cfg.Direction.prefers(f.Cost, c.best.Cost) {
		c.best = f.clone()
	}
}

// Solution returns the best food source seen so far. Before the first Fit
// it is the best initial food source.
func (c *Colony) Solution() Solution {
	return Solution{
		Position: append([]float64(nil), c.best.Position...),
		Cost:     c.best.Cost,
	}
}

// Status returns the accumulated counters.
func (c *Colony) Status() Status {
	return c.status
}

// Agents returns one snapshot per iteration, each holding ColonySize/2
// positions. It is empty unless LogAgents is set. reset clears the log.
func (c *Colony) Agents(reset bool) [][][]float64 {
	return c.agents.Snapshots(reset)
}

// Population returns a copy of the current food sources.
func (c *Colony) Population() Population {
	out := make(Population, len(c.foods))
	for i, f := range c.foods {
		out[i] = f.clone()
	}
	return out
}

// ScoutLimit returns the derived abandonment limit.
func (c *Colony) ScoutLimit() int {
	return c.scoutLimit
}

// Dim returns the problem dimension.
func (c *Colony) Dim() int {
	return c.bounds.Dim()
}

// Config returns the configuration the colony was built with.
func (c *Colony) Config() Config {
	return c.cfg
}
