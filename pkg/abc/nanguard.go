package abc

import "math"

type nanMode int

const (
	nanOff nanMode = iota
	// nanRedraw draws a new position until the cost is not NaN. Used for
	// deterministic evaluations, at initialization and scout events only.
	nanRedraw
	// nanResample re-evaluates the same position up to limit more times.
	// Used when the evaluation itself is stochastic, on every evaluation.
	nanResample
)

// nanGuard is the NaN policy wrapped around every cost evaluation.
// For nanRedraw a zero limit means no cap.
type nanGuard struct {
	mode  nanMode
	limit int
}

// measure evaluates x once, plus the resample retries when enabled.
func (c *Colony) measure(x []float64) float64 {
	cost := c.cost(x)
	if c.guard.mode != nanResample {
		return cost
	}
	for i := 0; math.IsNaN(cost) && i < c.guard.limit; i++ {
		c.status.NaNEvents++
		cost = c.cost(x)
	}
	return cost
}

// spawn draws a fresh food source inside the box.
func (c *Colony) spawn() FoodSource {
	x := c.bounds.random(c.rng)
	cost := c.measure(x)
	if c.guard.mode == nanRedraw {
		for n := 0; math.IsNaN(cost); n++ {
			if c.guard.limit > 0 && n >= c.guard.limit {
				c.logger.Warn("NaN redraw limit reached, keeping NaN food source",
					"limit", c.guard.limit,
				)
				break
			}
			c.status.NaNEvents++
			x = c.bounds.random(c.rng)
			cost = c.measure(x)
		}
	}
	return FoodSource{
		Position: x,
		Cost:     cost,
		Fitness:  c.cfg.Direction.fitness(cost),
	}
}
