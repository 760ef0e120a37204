package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/beecolony/internal/config"
	"github.com/cwbudde/beecolony/internal/metrics"
	"github.com/cwbudde/beecolony/internal/runner"
	"github.com/cwbudde/beecolony/internal/store"
)

var (
	runConfigPath string
	runDataDir    string
	runCheckpoint bool
	metricsAddr   string
	sweepSeeds    []int64
	sweepParallel int
)

// Flags that override the run file when given.
var (
	flagProblem    string
	flagKind       string
	flagDim        int
	flagBits       int
	flagSeed       int64
	flagIterations int
	flagRounds     int
	flagColonySize int
	flagDirection  string
	flagMethod     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an optimization",
	Long: `Builds a colony from a YAML run file (or the defaults) and runs it in rounds.
Flags override the run file. With --checkpoint the colony is saved after every
round and can be continued with "beecol resume". With --seeds one independent
run per seed is executed concurrently.`,
	RunE: runOptimization,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "YAML run file")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./data", "Base directory for checkpoints and traces")
	runCmd.Flags().BoolVar(&runCheckpoint, "checkpoint", false, "Save a checkpoint and trace after every round")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running (e.g. :9090)")
	runCmd.Flags().Int64SliceVar(&sweepSeeds, "seeds", nil, "Run one job per seed concurrently")
	runCmd.Flags().IntVar(&sweepParallel, "parallel", 0, "Maximum concurrent jobs for --seeds (0 = unlimited)")
	addRunFileFlags(runCmd)

	rootCmd.AddCommand(runCmd)
}

func addRunFileFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProblem, "problem", "", "Benchmark problem name")
	cmd.Flags().StringVar(&flagKind, "kind", "", "continuous or binary")
	cmd.Flags().IntVar(&flagDim, "dim", 0, "Dimension of a continuous problem")
	cmd.Flags().IntVar(&flagBits, "bits", 0, "Bit count of a binary problem")
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "Random seed")
	cmd.Flags().IntVar(&flagIterations, "iterations", 0, "Iterations per round")
	cmd.Flags().IntVar(&flagRounds, "rounds", 0, "Number of rounds")
	cmd.Flags().IntVar(&flagColonySize, "colony-size", 0, "Number of bees (even, at least 4)")
	cmd.Flags().StringVar(&flagDirection, "direction", "", "min or max")
	cmd.Flags().StringVar(&flagMethod, "method", "", "Binary method: am or bin")
}

// applyFlags copies the explicitly set flags onto run.
func applyFlags(cmd *cobra.Command, run *config.RunFile) {
	if cmd == nil {
		return
	}
	changed := cmd.Flags().Changed
	if changed("problem") {
		run.Problem = flagProblem
	}
	if changed("kind") {
		run.Kind = flagKind
	}
	if changed("dim") {
		run.Dim = flagDim
	}
	if changed("bits") {
		run.Bits = flagBits
	}
	if changed("seed") {
		seed := flagSeed
		run.Seed = &seed
	}
	if changed("iterations") {
		run.Iterations = flagIterations
	}
	if changed("rounds") {
		run.Rounds = flagRounds
	}
	if changed("colony-size") {
		run.ColonySize = flagColonySize
	}
	if changed("direction") {
		run.Direction = flagDirection
	}
	if changed("method") {
		run.Method = flagMethod
	}
}

func loadRunFile(cmd *cobra.Command) (config.RunFile, error) {
	run := config.Default()
	if runConfigPath != "" {
		loaded, err := config.Load(runConfigPath)
		if err != nil {
			return config.RunFile{}, err
		}
		run = loaded
	}
	applyFlags(cmd, &run)
	if err := run.Validate(); err != nil {
		return config.RunFile{}, fmt.Errorf("invalid run: %w", err)
	}
	return run, nil
}

func runOptimization(cmd *cobra.Command, args []string) error {
	run, err := loadRunFile(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := runner.Options{Logger: currentLogger(), Registry: runner.NewRegistry()}
	if runCheckpoint {
		fsStore, err := store.NewFSStore(runDataDir)
		if err != nil {
			return fmt.Errorf("failed to create checkpoint store: %w", err)
		}
		opts.Store = fsStore
		opts.TraceDir = fsStore.BaseDir()
	}

	if metricsAddr != "" {
		opts.Metrics = metrics.NewCollector(nil)
		shutdown, err := serveMetrics(metricsAddr, opts.Metrics.Handler())
		if err != nil {
			return err
		}
		defer shutdown()
	}

	if len(sweepSeeds) > 0 {
		_, err := runner.Sweep(ctx, run, sweepSeeds, sweepParallel, opts)
		printJobs(out(cmd), opts.Registry.List())
		return err
	}

	res, err := runner.Run(ctx, run, opts)
	if res != nil {
		printResults(out(cmd), []*runner.Result{res})
	}
	return err
}

// serveMetrics starts a /metrics endpoint and returns its shutdown function.
func serveMetrics(addr string, handler http.Handler) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			currentLogger().Error("Metrics server failed", "error", err)
		}
	}()
	currentLogger().Info("Serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func printResults(w io.Writer, results []*runner.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB ID\tSTATE\tROUNDS\tITERATIONS\tSCOUTS\tNANS\tBEST COST\tSOLUTION")
	for _, res := range results {
		if res == nil {
			continue
		}
		cost, solution := res.Best.Cost, formatPosition(res.Best.Position)
		if res.Binary != nil {
			cost, solution = res.Binary.Cost, formatBits(res.Binary.Bits)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.6g\t%s\n",
			res.JobID,
			res.State,
			res.Round,
			res.Status.Iterations,
			res.Status.ScoutEvents,
			res.Status.NaNEvents,
			cost,
			solution,
		)
	}
	tw.Flush()
}

// printJobs lists every job of a sweep, including the ones that failed
// before producing a result.
func printJobs(w io.Writer, jobs []runner.Job) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB ID\tSEED\tSTATE\tROUNDS\tITERATIONS\tBEST COST\tERROR")
	for _, job := range jobs {
		seed := "-"
		if job.Run.Seed != nil {
			seed = fmt.Sprint(*job.Run.Seed)
		}
		cost := job.Best.Cost
		if job.Binary != nil {
			cost = job.Binary.Cost
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.6g\t%s\n",
			job.ID,
			seed,
			job.State,
			job.Round,
			job.Status.Iterations,
			cost,
			job.Error,
		)
	}
	tw.Flush()
}

func formatPosition(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = fmt.Sprintf("%.4g", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatBits(bits []bool) string {
	var b strings.Builder
	for _, bit := range bits {
		if bit {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
