package abc

import (
	"fmt"
	"math"
)

// Encoder turns a continuous position, one coordinate per bit, into a bit vector.
type Encoder interface {
	// Decode maps x to bits. Stochastic encoders draw from r.
	Decode(x []float64, r *Rand) []bool
	// Probabilities returns the per-bit probability of a one for stochastic
	// encoders, and the coordinates unchanged for deterministic ones.
	Probabilities(x []float64) []float64
	Deterministic() bool
}

// AngleModulation decodes with the generating function
//
//	g(x) = sin(2π(x−A) · B · cos(2π(x−A) · C)) + D
//
// and sets bit i when g(x_i) >= 0. DefaultAngleModulation uses A=0, B=1,
// C=1, D=0 (Pampará & Engelbrecht, 2011).
type AngleModulation struct {
	A, B, C, D float64
}

// DefaultAngleModulation returns the coefficients 0, 1, 1, 0.
func DefaultAngleModulation() AngleModulation {
	return AngleModulation{A: 0, B: 1, C: 1, D: 0}
}

// Generate evaluates g at x.
func (am AngleModulation) Generate(x float64) float64 {
	t := 2 * math.Pi * (x - am.A)
	return math.Sin(t*am.B*math.Cos(t*am.C)) + am.D
}

func (am AngleModulation) Decode(x []float64, _ *Rand) []bool {
	bits := make([]bool, len(x))
	for i, v := range x {
		bits[i] = am.Generate(v) >= 0
	}
	return bits
}

func (am AngleModulation) Probabilities(x []float64) []float64 {
	return append([]float64(nil), x...)
}

func (am AngleModulation) Deterministic() bool { return true }

// Transfer is a sigmoid-family transfer function (Mirjalili et al., 2011).
type Transfer int

const (
	Sigmoid       Transfer = iota // 1/(1+exp(-x))
	Sigmoid2X                     // 1/(1+exp(-2x))
	SigmoidHalfX                  // 1/(1+exp(-x/2))
	SigmoidThirdX                 // 1/(1+exp(-x/3))
)

// ParseTransfer accepts "sigmoid", "sigmoid-2x", "sigmoid-x/2" or "sigmoid-x/3".
func ParseTransfer(s string) (Transfer, error) {
	switch s {
	case "sigmoid":
		return Sigmoid, nil
	case "sigmoid-2x":
		return Sigmoid2X, nil
	case "sigmoid-x/2":
		return SigmoidHalfX, nil
	case "sigmoid-x/3":
		return SigmoidThirdX, nil
	default:
		return 0, &ConfigError{
			Field:  "Transfer",
			Reason: fmt.Sprintf("unknown token %q (want sigmoid, sigmoid-2x, sigmoid-x/2 or sigmoid-x/3)", s),
		}
	}
}

func (t Transfer) String() string {
	switch t {
	case Sigmoid:
		return "sigmoid"
	case Sigmoid2X:
		return "sigmoid-2x"
	case SigmoidHalfX:
		return "sigmoid-x/2"
	case SigmoidThirdX:
		return "sigmoid-x/3"
	default:
		return fmt.Sprintf("Transfer(%d)", int(t))
	}
}

func (t Transfer) valid() bool {
	return t >= Sigmoid && t <= SigmoidThirdX
}

// Apply returns the probability of a one for coordinate x.
func (t Transfer) Apply(x float64) float64 {
	switch t {
	case Sigmoid2X:
		x *= 2
	case SigmoidHalfX:
		x /= 2
	case SigmoidThirdX:
		x /= 3
	}
	return 1 / (1 + math.Exp(-x))
}

// ProbabilisticTransfer samples bit i as Bernoulli(Transfer(x_i)), afresh on
// every call.
type ProbabilisticTransfer struct {
	Transfer Transfer
}

func (pt ProbabilisticTransfer) Decode(x []float64, r *Rand) []bool {
	bits := make([]bool, len(x))
	for i, v := range x {
		bits[i] = r.Float64() < pt.Transfer.Apply(v)
	}
	return bits
}

func (pt ProbabilisticTransfer) Probabilities(x []float64) []float64 {
	p := make([]float64, len(x))
	for i, v := range x {
		p[i] = pt.Transfer.Apply(v)
	}
	return p
}

func (pt ProbabilisticTransfer) Deterministic() bool { return false }

// Method selects the binary variant.
type Method int

const (
	// AngleModulated is AMABC: deterministic angle-modulation decoding.
	AngleModulated Method = iota
	// Probabilistic is BABC: sigmoid transfer plus Bernoulli sampling.
	Probabilistic
)

// ParseMethod accepts "am" or "bin".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "am":
		return AngleModulated, nil
	case "bin":
		return Probabilistic, nil
	default:
		return 0, &ConfigError{Field: "Method", Reason: fmt.Sprintf("unknown token %q (want am or bin)", s)}
	}
}

func (m Method) String() string {
	switch m {
	case AngleModulated:
		return "am"
	case Probabilistic:
		return "bin"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// DefaultBound is the per-bit search interval used when no boundaries are given.
func (m Method) DefaultBound() Bound {
	if m == Probabilistic {
		return Bound{Lower: -10, Upper: 10}
	}
	return Bound{Lower: -2, Upper: 2}
}
