package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/beecolony/internal/bench"
	"github.com/cwbudde/beecolony/internal/opt"
	"github.com/cwbudde/beecolony/internal/runner"
	"github.com/cwbudde/beecolony/pkg/abc"
)

var (
	compareProblem    string
	compareDim        int
	compareSeeds      []int64
	compareIterations int
	compareColonySize int
	compareParallel   int
	compareDirection  string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the bee colony with the mayfly optimizer",
	Long: `Runs the bee colony and the mayfly optimizer on a continuous benchmark
once per seed with the same iteration count and prints every run followed by
a per-optimizer summary.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareProblem, "problem", "sphere", "Continuous benchmark problem")
	compareCmd.Flags().IntVar(&compareDim, "dim", 5, "Problem dimension")
	compareCmd.Flags().Int64SliceVar(&compareSeeds, "seeds", []int64{1, 2, 3}, "Seeds, one run per optimizer each")
	compareCmd.Flags().IntVar(&compareIterations, "iterations", 200, "Iterations per run")
	compareCmd.Flags().IntVar(&compareColonySize, "colony-size", 40, "Bee colony size; mayfly uses at least 20")
	compareCmd.Flags().IntVar(&compareParallel, "parallel", 0, "Maximum concurrent runs (0 = unlimited)")
	compareCmd.Flags().StringVar(&compareDirection, "direction", "min", "min or max")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	fn, err := bench.Lookup(compareProblem)
	if err != nil {
		return err
	}
	if compareDim < 1 {
		return &abc.ConfigError{Field: "dim", Reason: "must be at least 1"}
	}
	if len(compareSeeds) == 0 {
		return &abc.ConfigError{Field: "seeds", Reason: "at least one seed required"}
	}
	direction := abc.Minimize
	switch compareDirection {
	case "min":
	case "max":
		direction = abc.Maximize
	default:
		return &abc.ConfigError{Field: "direction", Reason: "must be min or max"}
	}

	logger := currentLogger()
	contenders := []runner.Contender{
		{
			Name: "abc",
			New: func(seed int64) opt.Optimizer {
				cfg := abc.DefaultConfig()
				cfg.ColonySize = compareColonySize
				cfg.Iterations = compareIterations
				cfg.Direction = direction
				cfg.Seed = abc.Seed(seed)
				cfg.Logger = logger
				return opt.NewABC(cfg)
			},
		},
		{
			Name: "mayfly",
			New: func(seed int64) opt.Optimizer {
				return opt.NewMayfly(compareIterations, max(compareColonySize, opt.MinMayflyPopulation), seed, direction)
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("Starting comparison",
		"problem", fn.Name(),
		"dimension", compareDim,
		"seeds", len(compareSeeds),
		"iterations", compareIterations,
	)
	entries, err := runner.Compare(ctx, fn, compareDim, compareSeeds, contenders, compareParallel)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	printComparison(out(cmd), fn, compareDim, entries, runner.Summarize(entries, direction))
	return nil
}

func printComparison(w io.Writer, fn bench.Func, dim int, entries []runner.Entry, summaries []runner.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPTIMIZER\tSEED\tCOST\tELAPSED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%.6g\t%s\n", e.Optimizer, e.Seed, e.Solution.Cost, e.Elapsed.Round(time.Microsecond))
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%s (dim %d, optimum %.6g)\n", fn.Name(), dim, fn.Optimum(dim))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPTIMIZER\tRUNS\tBEST\tMEAN\tWORST\tTOTAL TIME")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.6g\t%.6g\t%.6g\t%s\n", s.Optimizer, s.Runs, s.Best, s.Mean, s.Worst, s.Elapsed.Round(time.Microsecond))
	}
	tw.Flush()
}
