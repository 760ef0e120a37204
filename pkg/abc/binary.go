package abc

import (
	"context"
	"fmt"
	"math"
)

// BinaryCostFunc evaluates a bit vector. It may return NaN.
type BinaryCostFunc func(bits []bool) float64

// BinaryConfig adds the binary-variant parameters to Config.
//
// Config.NaNProtection applies to the angle-modulated method, where decoding
// is deterministic and a NaN position is redrawn. The probabilistic method
// uses NaNAttempts instead: a NaN result is re-sampled up to NaNAttempts
// times and then kept.
type BinaryConfig struct {
	Config

	// BitsCount sizes the problem when Boundaries is empty.
	BitsCount int

	// Boundaries overrides BitsCount and the method's default bound.
	Boundaries Boundaries

	Method          Method
	Transfer        Transfer
	AngleModulation AngleModulation
	ResultFormat    ResultFormat

	// BestModelIterations is the number of samples drawn from the final
	// position by the probabilistic method. Zero uses Iterations, bumped to
	// the next odd number.
	BestModelIterations int

	NaNAttempts int
}

// DefaultBinaryConfig returns DefaultConfig with the angle-modulated method,
// the plain sigmoid transfer, the best-result format and 3 NaN attempts.
func DefaultBinaryConfig() BinaryConfig {
	return BinaryConfig{
		Config:          DefaultConfig(),
		Method:          AngleModulated,
		Transfer:        Sigmoid,
		AngleModulation: DefaultAngleModulation(),
		ResultFormat:    Best,
		NaNAttempts:     3,
	}
}

// SearchBoundaries returns the continuous box the colony searches.
func (c BinaryConfig) SearchBoundaries() Boundaries {
	if len(c.Boundaries) > 0 {
		return c.Boundaries.clone()
	}
	b := c.Method.DefaultBound()
	return UniformBoundaries(c.BitsCount, b.Lower, b.Upper)
}

// Samples returns the number of final samples for the probabilistic method.
func (c BinaryConfig) Samples() int {
	if c.BestModelIterations > 0 {
		return c.BestModelIterations
	}
	n := c.Iterations
	if n%2 == 0 {
		n++
	}
	return n
}

// Validate checks the embedded Config and the binary parameters.
func (c BinaryConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.Method != AngleModulated && c.Method != Probabilistic {
		return &ConfigError{Field: "Method", Reason: "must be AngleModulated or Probabilistic"}
	}
	if !c.Transfer.valid() {
		return &ConfigError{Field: "Transfer", Reason: "unknown transfer function"}
	}
	if c.ResultFormat != Best && c.ResultFormat != Average {
		return &ConfigError{Field: "ResultFormat", Reason: "must be Best or Average"}
	}
	if c.BestModelIterations < 0 {
		return &ConfigError{Field: "BestModelIterations", Reason: "cannot be negative"}
	}
	if c.NaNAttempts < 0 {
		return &ConfigError{Field: "NaNAttempts", Reason: "cannot be negative"}
	}
	if len(c.Boundaries) == 0 && c.BitsCount < 1 {
		return &ConfigError{Field: "BitsCount", Reason: "must be at least 1 when no boundaries are given"}
	}
	return c.SearchBoundaries().Validate()
}

func (c BinaryConfig) encoder() Encoder {
	if c.Method == Probabilistic {
		return ProbabilisticTransfer{Transfer: c.Transfer}
	}
	return c.AngleModulation
}

func (c BinaryConfig) guard() nanGuard {
	if c.Method == Probabilistic {
		if c.NaNAttempts == 0 {
			return nanGuard{mode: nanOff}
		}
		return nanGuard{mode: nanResample, limit: c.NaNAttempts}
	}
	return continuousGuard(c.Config)
}

// BinaryColony searches bit vectors by running a Colony over one continuous
// coordinate per bit and decoding every evaluated position.
type BinaryColony struct {
	cfg     BinaryConfig
	cost    BinaryCostFunc
	encoder Encoder
	rng     *Rand
	colony  *Colony
	result  *BinarySolution
}

// NewBinary validates cfg and initializes the underlying colony.
func NewBinary(cost BinaryCostFunc, cfg BinaryConfig) (*BinaryColony, error) {
	if cost == nil {
		return nil, &ConfigError{Field: "BinaryCostFunc", Reason: "cannot be nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &BinaryColony{
		cfg:     cfg,
		cost:    cost,
		encoder: cfg.encoder(),
		rng:     newRandFromSeed(cfg.Seed),
	}
	b.colony = newColony(b.evaluate, cfg.SearchBoundaries(), cfg.Config, cfg.guard(), b.rng)
	b.colony.initialize()
	return b, nil
}

// RestoreBinary rebuilds a binary colony from a captured state.
func RestoreBinary(cost BinaryCostFunc, cfg BinaryConfig, st *State) (*BinaryColony, error) {
	if cost == nil {
		return nil, &ConfigError{Field: "BinaryCostFunc", Reason: "cannot be nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bounds := cfg.SearchBoundaries()
	if err := checkState(st, bounds, cfg.FoodSources()); err != nil {
		return nil, err
	}
	b := &BinaryColony{
		cfg:     cfg,
		cost:    cost,
		encoder: cfg.encoder(),
		rng:     &Rand{},
	}
	if err := b.rng.UnmarshalBinary(st.Rand); err != nil {
		return nil, err
	}
	b.colony = newColony(b.evaluate, bounds, cfg.Config, cfg.guard(), b.rng)
	b.colony.load(st)
	if st.Result != nil {
		res := *st.Result
		b.result = &res
	}
	return b, nil
}

func (b *BinaryColony) evaluate(x []float64) float64 {
	return b.cost(b.encoder.Decode(x, b.rng))
}

// Fit runs the colony, then extracts the reported bit vector from the best
// position.
func (b *BinaryColony) Fit(ctx context.Context) (BinarySolution, error) {
	if _, err := b.colony.Fit(ctx); err != nil {
		return b.Solution(), err
	}
	res := b.resolve()
	b.result = &res

	b.colony.logger.Debug("Binary fit complete",
		"method", b.cfg.Method.String(),
		"cost", res.Cost,
		"count", res.Count,
		"samples", res.Samples,
	)
	return b.Solution(), nil
}

func (b *BinaryColony) resolve() BinarySolution {
	pos := b.colony.best.Position
	if b.encoder.Deterministic() {
		bits := b.encoder.Decode(pos, b.rng)
		return BinarySolution{Bits: bits, Cost: b.cost(bits), Count: 1, Samples: 1}
	}

	ex := extractor{
		samples:   b.cfg.Samples(),
		format:    b.cfg.ResultFormat,
		direction: b.cfg.Direction,
	}
	return ex.extract(func() ([]bool, float64) {
		bits := b.encoder.Decode(pos, b.rng)
		cost := b.cost(bits)
		for i := 0; math.IsNaN(cost) && i < b.cfg.NaNAttempts; i++ {
			b.colony.status.NaNEvents++
			bits = b.encoder.Decode(pos, b.rng)
			cost = b.cost(bits)
		}
		return bits, cost
	})
}

// Solution returns the result of the last Fit. It is the zero value before
// the first Fit completes.
func (b *BinaryColony) Solution() BinarySolution {
	if b.result == nil {
		return BinarySolution{}
	}
	res := *b.result
	res.Bits = append([]bool(nil), res.Bits...)
	return res
}

// Probabilities returns the per-bit probabilities of the best position for
// the probabilistic method, or the raw best position for angle modulation.
// It never samples.
func (b *BinaryColony) Probabilities() []float64 {
	return b.encoder.Probabilities(b.colony.best.Position)
}

// Status returns the accumulated counters of the underlying colony.
func (b *BinaryColony) Status() Status {
	return b.colony.Status()
}

// Agents returns the continuous position snapshots.
func (b *BinaryColony) Agents(reset bool) [][][]float64 {
	return b.colony.Agents(reset)
}

// Colony exposes the continuous search underneath.
func (b *BinaryColony) Colony() *Colony {
	return b.colony
}

// State captures the colony and the last extracted result.
func (b *BinaryColony) State() (*State, error) {
	st, err := b.colony.State()
	if err != nil {
		return nil, fmt.Errorf("failed to capture binary colony: %w", err)
	}
	if b.result != nil {
		res := b.Solution()
		st.Result = &res
	}
	return st, nil
}
