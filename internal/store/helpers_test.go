package store

import (
	"context"
	"testing"
	"time"

	"github.com/cwbudde/beecolony/internal/config"
	"github.com/cwbudde/beecolony/pkg/abc"
)

func sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// testRun is a small continuous run file.
func testRun() config.RunFile {
	run := config.Default()
	run.Dim = 3
	run.ColonySize = 10
	run.Iterations = 5
	seed := int64(42)
	run.Seed = &seed
	return run
}

// createTestCheckpoint runs a real colony for one round and captures it.
func createTestCheckpoint(t *testing.T, jobID string) *Checkpoint {
	t.Helper()

	run := testRun()
	cfg, err := run.Config(nil)
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	colony, err := abc.New(sphere, abc.UniformBoundaries(run.Dim, -10, 10), cfg)
	if err != nil {
		t.Fatalf("abc.New failed: %v", err)
	}
	best, err := colony.Fit(context.Background())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	state, err := colony.State()
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}

	cp := NewCheckpoint(jobID, run, state, best, 1)
	cp.Timestamp = time.Now()
	return cp
}
