package abc

import (
	"fmt"
	"math"
)

// Direction selects whether the colony searches for the minimum or the maximum.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// ParseDirection accepts "min" or "max".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "min":
		return Minimize, nil
	case "max":
		return Maximize, nil
	default:
		return 0, &ConfigError{Field: "Direction", Reason: fmt.Sprintf("unknown token %q (want min or max)", s)}
	}
}

func (d Direction) String() string {
	switch d {
	case Minimize:
		return "min"
	case Maximize:
		return "max"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func (d Direction) valid() bool {
	return d == Minimize || d == Maximize
}

// fitness maps a raw cost to a strictly positive value where higher is
// always better (Karaboga & Basturk, eq. 2). NaN stays NaN.
func (d Direction) fitness(cost float64) float64 {
	if math.IsNaN(cost) {
		return math.NaN()
	}
	if d == Maximize {
		if cost > 0 {
			return 1 + cost
		}
		return 1 / (1 + math.Abs(cost))
	}
	if cost < 0 {
		return 1 + math.Abs(cost)
	}
	return 1 / (1 + cost)
}

// prefers reports whether cost a is strictly better than cost b.
// NaN is worse than any number.
func (d Direction) prefers(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	case d == Maximize:
		return a > b
	default:
		return a < b
	}
}

// accepts is the greedy acceptance rule: the candidate replaces the current
// source when its transformed fitness is at least as high. Fitness saturates
// near zero cost (1/(1+1e-17) == 1), so equal fitness falls back to the raw
// costs and a raw-worse candidate is rejected.
func (d Direction) accepts(candCost, candFit, curCost, curFit float64) bool {
	switch {
	case math.IsNaN(candFit):
		return false
	case math.IsNaN(curFit):
		return true
	case candFit != curFit:
		return candFit > curFit
	default:
		return !d.prefers(curCost, candCost)
	}
}
