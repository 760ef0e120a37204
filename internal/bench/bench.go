// Package bench provides named benchmark cost functions from
// http://en.wikipedia.org/wiki/Test_functions_for_optimization, used to
// exercise and compare optimizers.
package bench

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/beecolony/pkg/abc"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	exp  = math.Exp
	sqrt = math.Sqrt
)

// Func is a continuous benchmark defined for any dimension.
type Func interface {
	Name() string
	Eval(x []float64) float64
	Bounds(dim int) abc.Boundaries
	// Optimum is the global minimum value for the given dimension.
	Optimum(dim int) float64
}

// BinaryFunc is a benchmark over bit vectors.
type BinaryFunc interface {
	Name() string
	Eval(bits []bool) float64
	Direction() abc.Direction
	// Optimum is the best reachable cost for n bits.
	Optimum(bits int) float64
}

var funcs = map[string]Func{}
var binaryFuncs = map[string]BinaryFunc{}

func init() {
	for _, fn := range []Func{Sphere{}, Rastrigin{}, Ackley{}, Rosenbrock{}, Styblinski{}} {
		funcs[fn.Name()] = fn
	}
	for _, fn := range []BinaryFunc{SquaredBin{}, OneMax{}} {
		binaryFuncs[fn.Name()] = fn
	}
}

// Lookup returns the continuous benchmark registered under name.
func Lookup(name string) (Func, error) {
	fn, ok := funcs[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem %q (available: %v)", name, Names())
	}
	return fn, nil
}

// LookupBinary returns the binary benchmark registered under name.
func LookupBinary(name string) (BinaryFunc, error) {
	fn, ok := binaryFuncs[name]
	if !ok {
		return nil, fmt.Errorf("unknown binary problem %q (available: %v)", name, BinaryNames())
	}
	return fn, nil
}

// Names lists the continuous benchmarks in sorted order.
func Names() []string {
	return sortedKeys(funcs)
}

// BinaryNames lists the binary benchmarks in sorted order.
func BinaryNames() []string {
	return sortedKeys(binaryFuncs)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type Sphere struct{}

func (Sphere) Name() string { return "sphere" }

func (Sphere) Eval(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		tot += v * v
	}
	return tot
}

func (Sphere) Bounds(dim int) abc.Boundaries { return abc.UniformBoundaries(dim, -10, 10) }
func (Sphere) Optimum(int) float64           { return 0 }

type Rastrigin struct{}

func (Rastrigin) Name() string { return "rastrigin" }

func (Rastrigin) Eval(x []float64) float64 {
	tot := 10 * float64(len(x))
	for _, v := range x {
		tot += v*v - 10*cos(2*math.Pi*v)
	}
	return tot
}

func (Rastrigin) Bounds(dim int) abc.Boundaries { return abc.UniformBoundaries(dim, -5.12, 5.12) }
func (Rastrigin) Optimum(int) float64           { return 0 }

// Ackley is the n-dimensional generalization of the two-dimensional form.
type Ackley struct{}

func (Ackley) Name() string { return "ackley" }

func (Ackley) Eval(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	n := float64(len(x))
	sq, cs := 0.0, 0.0
	for _, v := range x {
		sq += v * v
		cs += cos(2 * math.Pi * v)
	}
	return -20*exp(-0.2*sqrt(sq/n)) - exp(cs/n) + 20 + math.E
}

func (Ackley) Bounds(dim int) abc.Boundaries { return abc.UniformBoundaries(dim, -5, 5) }
func (Ackley) Optimum(int) float64           { return 0 }

type Rosenbrock struct{}

func (Rosenbrock) Name() string { return "rosenbrock" }

func (Rosenbrock) Eval(x []float64) float64 {
	tot := 0.0
	for i := 0; i+1 < len(x); i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		tot += 100*a*a + b*b
	}
	return tot
}

func (Rosenbrock) Bounds(dim int) abc.Boundaries { return abc.UniformBoundaries(dim, -5, 10) }
func (Rosenbrock) Optimum(int) float64           { return 0 }

type Styblinski struct{}

func (Styblinski) Name() string { return "styblinski" }

func (Styblinski) Eval(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		tot += math.Pow(v, 4) - 16*math.Pow(v, 2) + 5*v
	}
	return tot / 2
}

func (Styblinski) Bounds(dim int) abc.Boundaries { return abc.UniformBoundaries(dim, -5, 5) }

// Optimum is reached at x_i = -2.903534 in every coordinate.
func (Styblinski) Optimum(dim int) float64 { return -39.16616570377142 * float64(dim) }

// BitsToInt reads bits most significant first.
func BitsToInt(bits []bool) int {
	n := 0
	for _, b := range bits {
		n <<= 1
		if b {
			n |= 1
		}
	}
	return n
}

// SquaredBin evaluates (x-1)(x-3)(x-11) at the integer the bits encode.
// Over 4 bits the minimum is -105 at x=8.
type SquaredBin struct{}

func (SquaredBin) Name() string { return "squared-bin" }

func (SquaredBin) Eval(bits []bool) float64 {
	x := float64(BitsToInt(bits))
	return (x - 1) * (x - 3) * (x - 11)
}

func (SquaredBin) Direction() abc.Direction { return abc.Minimize }

func (fn SquaredBin) Optimum(bits int) float64 {
	best := math.Inf(1)
	limit := 1 << min(bits, 20)
	for i := 0; i < limit; i++ {
		x := float64(i)
		best = math.Min(best, (x-1)*(x-3)*(x-11))
	}
	return best
}

// OneMax counts the set bits.
type OneMax struct{}

func (OneMax) Name() string { return "onemax" }

func (OneMax) Eval(bits []bool) float64 {
	n := 0
	for _, b := range bits {
		if b {
			n++
		}
	}
	return float64(n)
}

func (OneMax) Direction() abc.Direction { return abc.Maximize }
func (OneMax) Optimum(bits int) float64  { return float64(bits) }
