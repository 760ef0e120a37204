package abc

import (
	"fmt"
	"math"
)

// Bound is the closed search interval of one dimension.
type Bound struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Boundaries holds one Bound per dimension. Its length is the problem dimension.
type Boundaries []Bound

// UniformBoundaries returns n identical bounds [lo, hi].
func UniformBoundaries(n int, lo, hi float64) Boundaries {
	b := make(Boundaries, n)
	for i := range b {
		b[i] = Bound{Lower: lo, Upper: hi}
	}
	return b
}

// Dim returns the number of dimensions.
func (b Boundaries) Dim() int {
	return len(b)
}

// Validate reports the first malformed bound.
func (b Boundaries) Validate() error {
	if len(b) == 0 {
		return &ConfigError{Field: "Boundaries", Reason: "cannot be empty"}
	}
	for i, bd := range b {
		if math.IsNaN(bd.Lower) || math.IsNaN(bd.Upper) || math.IsInf(bd.Lower, 0) || math.IsInf(bd.Upper, 0) {
			return &ConfigError{Field: fmt.Sprintf("Boundaries[%d]", i), Reason: "must be finite"}
		}
		if bd.Lower > bd.Upper {
			return &ConfigError{
				Field:  fmt.Sprintf("Boundaries[%d]", i),
				Reason: fmt.Sprintf("lower %g exceeds upper %g", bd.Lower, bd.Upper),
			}
		}
	}
	return nil
}

// Clamp limits v to the bound of dimension d.
func (b Boundaries) Clamp(d int, v float64) float64 {
	return math.Max(b[d].Lower, math.Min(b[d].Upper, v))
}

// Contains reports whether every coordinate of x lies inside its bound.
func (b Boundaries) Contains(x []float64) bool {
	if len(x) != len(b) {
		return false
	}
	for d, v := range x {
		if v < b[d].Lower || v > b[d].Upper {
			return false
		}
	}
	return true
}

// random draws a position uniformly inside the box, one draw per dimension.
func (b Boundaries) random(r *Rand) []float64 {
	x := make([]float64, len(b))
	for d, bd := range b {
		x[d] = r.Uniform(bd.Lower, bd.Upper)
	}
	return x
}

func (b Boundaries) clone() Boundaries {
	return append(Boundaries(nil), b...)
}
