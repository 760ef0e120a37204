package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/beecolony/internal/config"
	"github.com/cwbudde/beecolony/pkg/abc"
)

// Checkpoint represents a saved colony that can be resumed later.
// All fields are serialized to JSON for persistence.
//
// Unlike a best-parameters snapshot, the checkpoint holds the complete
// colony state: every food source with its trial counter, the cached best,
// the run counters, the agent log and the random generator state. Restoring
// it and calling Fit continues exactly where the original process stopped,
// so a resumed run produces the same trajectory as an uninterrupted one.
type Checkpoint struct {
	// JobID is the unique identifier for this optimization job
	JobID string `json:"jobId"`

	// Run is the run file the colony was built from. Resume rebuilds the
	// colony configuration from it.
	Run config.RunFile `json:"run"`

	// State is the exported colony
	State *abc.State `json:"state"`

	// Best is the best food source in caller units
	Best abc.Solution `json:"best"`

	// Binary holds the extracted bit vector for binary runs
	Binary *abc.BinarySolution `json:"binary,omitempty"`

	// Iteration is the number of completed loop iterations
	Iteration int `json:"iteration"`

	// Round is the number of completed Fit calls
	Round int `json:"round"`

	// Timestamp records when this checkpoint was created
	Timestamp time.Time `json:"timestamp"`
}

// CheckpointInfo contains metadata about a checkpoint without the colony state.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	BestCost  float64   `json:"-"`
	Iteration int       `json:"iteration"`
	Round     int       `json:"round"`
	Timestamp time.Time `json:"timestamp"`

	// Kind is continuous or binary
	Kind      string `json:"kind"`
	Problem   string `json:"problem"`
	Dimension int    `json:"dimension"`
}

// NewCheckpoint creates a checkpoint from a captured colony state.
func NewCheckpoint(jobID string, run config.RunFile, state *abc.State, best abc.Solution, round int) *Checkpoint {
	cp := &Checkpoint{
		JobID:     jobID,
		Run:       run,
		State:     state,
		Best:      best,
		Round:     round,
		Timestamp: time.Now(),
	}
	if state != nil {
		cp.Iteration = state.Status.Iterations
		cp.Binary = state.Result
	}
	return cp
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		BestCost:  c.Best.Cost,
		Iteration: c.Iteration,
		Round:     c.Round,
		Timestamp: c.Timestamp,
		Kind:      c.Run.Kind,
		Problem:   c.Run.Problem,
		Dimension: c.Run.Dimension(),
	}
}

// Validate checks if the checkpoint has valid data.
// Returns an error if any required field is missing or invalid.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if err := c.Run.Validate(); err != nil {
		return &ValidationError{Field: "Run", Reason: err.Error()}
	}
	if c.State == nil {
		return &ValidationError{Field: "State", Reason: "cannot be nil"}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Iteration != c.State.Status.Iterations {
		return &ValidationError{
			Field:  "Iteration",
			Reason: fmt.Sprintf("is %d but the colony has run %d iterations", c.Iteration, c.State.Status.Iterations),
		}
	}
	if c.Round < 0 {
		return &ValidationError{Field: "Round", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	// Food sources must match the run file's colony
	expectedFoods := c.Run.ColonySize / 2
	if len(c.State.Foods) != expectedFoods {
		return &ValidationError{
			Field:  "State.Foods",
			Reason: fmt.Sprintf("length mismatch: expected %d food sources for colony size %d", expectedFoods, c.Run.ColonySize),
		}
	}
	dim := c.Run.Dimension()
	if len(c.Best.Position) != dim {
		return &ValidationError{
			Field:  "Best.Position",
			Reason: fmt.Sprintf("length mismatch: expected %d coordinates", dim),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given run file.
// The problem, its size and the colony shape must match; the iteration
// count, rounds and convergence settings may change between sessions.
func (c *Checkpoint) IsCompatible(run config.RunFile) error {
	if c.Run.Kind != run.Kind {
		return &CompatibilityError{Field: "Kind", Expected: c.Run.Kind, Actual: run.Kind}
	}
	if c.Run.Problem != run.Problem {
		return &CompatibilityError{Field: "Problem", Expected: c.Run.Problem, Actual: run.Problem}
	}
	if c.Run.Dimension() != run.Dimension() {
		return &CompatibilityError{
			Field:    "Dimension",
			Expected: fmt.Sprintf("%d", c.Run.Dimension()),
			Actual:   fmt.Sprintf("%d", run.Dimension()),
		}
	}
	if c.Run.ColonySize != run.ColonySize {
		return &CompatibilityError{
			Field:    "ColonySize",
			Expected: fmt.Sprintf("%d", c.Run.ColonySize),
			Actual:   fmt.Sprintf("%d", run.ColonySize),
		}
	}
	if c.Run.Direction != run.Direction {
		return &CompatibilityError{Field: "Direction", Expected: c.Run.Direction, Actual: run.Direction}
	}
	if c.Run.Kind == config.KindBinary && c.Run.Method != run.Method {
		return &CompatibilityError{Field: "Method", Expected: c.Run.Method, Actual: run.Method}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
