package runner

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/beecolony/internal/bench"
	"github.com/cwbudde/beecolony/internal/opt"
	"github.com/cwbudde/beecolony/pkg/abc"
)

func TestSweepRunsEverySeed(t *testing.T) {
	reg := NewRegistry()
	seeds := []int64{1, 2, 3, 4}

	results, err := Sweep(context.Background(), sphereRun(0, 2), seeds, 2, Options{Registry: reg})
	require.NoError(t, err)
	require.Len(t, results, len(seeds))

	ids := map[string]bool{}
	for _, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, StateCompleted, res.State)
		assert.Equal(t, 20, res.Status.Iterations)
		ids[res.JobID] = true
	}
	assert.Len(t, ids, len(seeds))
	assert.Len(t, reg.List(), len(seeds))

	// Same seed, same result, whatever the scheduling.
	single, err := Run(context.Background(), sphereRun(3, 2), Options{})
	require.NoError(t, err)
	assert.Equal(t, single.Best, results[2].Best)
}

func TestSweepStopsOnFailure(t *testing.T) {
	base := sphereRun(0, 1)
	base.Problem = "unknown"

	_, err := Sweep(context.Background(), base, []int64{1, 2}, 0, Options{})
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	cfg := abc.DefaultConfig()
	cfg.Iterations = 60
	contenders := []Contender{
		{Name: "abc", New: func(seed int64) opt.Optimizer {
			c := cfg
			c.Seed = abc.Seed(seed)
			return opt.NewABC(c)
		}},
		{Name: "mayfly", New: func(seed int64) opt.Optimizer {
			return opt.NewMayfly(60, opt.MinMayflyPopulation, seed, abc.Minimize)
		}},
	}

	entries, err := Compare(context.Background(), bench.Sphere{}, 2, []int64{1, 2}, contenders, 3)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "abc", entries[0].Optimizer)
	assert.Equal(t, int64(2), entries[1].Seed)
	assert.Equal(t, "mayfly", entries[2].Optimizer)
	for _, e := range entries {
		assert.Len(t, e.Solution.Position, 2)
		assert.Less(t, e.Solution.Cost, 1.0)
	}

	summaries := Summarize(entries, abc.Minimize)
	require.Len(t, summaries, 2)
	for _, s := range summaries {
		assert.Equal(t, 2, s.Runs)
		assert.LessOrEqual(t, s.Best, s.Mean)
		assert.LessOrEqual(t, s.Mean, s.Worst)
	}
	assert.LessOrEqual(t, summaries[0].Mean, summaries[1].Mean)
}

func TestCompareFailure(t *testing.T) {
	contenders := []Contender{{Name: "mayfly", New: func(seed int64) opt.Optimizer {
		return opt.NewMayfly(5, 4, seed, abc.Minimize)
	}}}
	_, err := Compare(context.Background(), bench.Sphere{}, 2, []int64{1}, contenders, 0)
	assert.ErrorIs(t, err, abc.ErrInvalidConfig)
}

func TestSummarizeNaN(t *testing.T) {
	entries := []Entry{
		{Optimizer: "x", Solution: abc.Solution{Cost: 3}},
		{Optimizer: "x", Solution: abc.Solution{Cost: nan()}},
		{Optimizer: "x", Solution: abc.Solution{Cost: 5}},
	}
	s := Summarize(entries, abc.Maximize)
	require.Len(t, s, 1)
	assert.Equal(t, 5.0, s[0].Best)
	assert.True(t, s[0].Worst != s[0].Worst, "NaN is worst")
	assert.Equal(t, 4.0, s[0].Mean)
}

func nan() float64 { return math.NaN() }
