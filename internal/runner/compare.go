package runner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/beecolony/internal/bench"
	"github.com/cwbudde/beecolony/internal/opt"
	"github.com/cwbudde/beecolony/pkg/abc"
)

// Contender creates a seeded optimizer for a comparison.
type Contender struct {
	Name string
	New  func(seed int64) opt.Optimizer
}

// Entry is one optimizer run of a comparison.
type Entry struct {
	Optimizer string
	Seed      int64
	Solution  abc.Solution
	Elapsed   time.Duration
}

// Summary aggregates the entries of one optimizer.
type Summary struct {
	Optimizer string
	Runs      int
	Best      float64
	Worst     float64
	Mean      float64
	Elapsed   time.Duration
}

// Compare runs every contender on fn once per seed, concurrently. Entries
// come back contender-major, seed-minor, regardless of completion order.
func Compare(ctx context.Context, fn bench.Func, dim int, seeds []int64, contenders []Contender, parallel int) ([]Entry, error) {
	bounds := fn.Bounds(dim)
	entries := make([]Entry, len(contenders)*len(seeds))

	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for ci, c := range contenders {
		for si, seed := range seeds {
			idx := ci*len(seeds) + si
			g.Go(func() error {
				start := time.Now()
				sol, err := c.New(seed).Run(gctx, fn.Eval, bounds)
				if err != nil {
					return fmt.Errorf("%s seed %d: %w", c.Name, seed, err)
				}
				entries[idx] = Entry{
					Optimizer: c.Name,
					Seed:      seed,
					Solution:  sol,
					Elapsed:   time.Since(start),
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Summarize groups entries by optimizer, ranking best and worst by
// direction. NaN costs count as worst and are left out of the mean.
func Summarize(entries []Entry, direction abc.Direction) []Summary {
	better := func(a, b float64) bool {
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		if direction == abc.Maximize {
			return a > b
		}
		return a < b
	}

	byName := map[string]*Summary{}
	sums := map[string]float64{}
	finite := map[string]int{}
	var order []string

	for _, e := range entries {
		s, ok := byName[e.Optimizer]
		cost := e.Solution.Cost
		if !ok {
			s = &Summary{Optimizer: e.Optimizer, Best: cost, Worst: cost}
			byName[e.Optimizer] = s
			order = append(order, e.Optimizer)
		}
		s.Runs++
		s.Elapsed += e.Elapsed
		if better(cost, s.Best) {
			s.Best = cost
		}
		if better(s.Worst, cost) {
			s.Worst = cost
		}
		if !math.IsNaN(cost) {
			sums[e.Optimizer] += cost
			finite[e.Optimizer]++
		}
	}

	out := make([]Summary, 0, len(order))
	for _, name := range order {
		s := byName[name]
		s.Mean = math.NaN()
		if n := finite[name]; n > 0 {
			s.Mean = sums[name] / float64(n)
		}
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool { return better(out[i].Mean, out[j].Mean) })
	return out
}
