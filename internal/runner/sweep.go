package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/beecolony/internal/config"
)

// Sweep runs one independent job per seed, at most parallel at a time
// (0 means unlimited). Each colony stays single-threaded; concurrency is
// only across jobs. Results are in seed order. The first failure cancels
// the remaining jobs.
func Sweep(ctx context.Context, base config.RunFile, seeds []int64, parallel int, opts Options) ([]*Result, error) {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	results := make([]*Result, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i, seed := range seeds {
		g.Go(func() error {
			run := base
			run.Seed = &seed
			res, err := Run(gctx, run, opts)
			results[i] = res
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
