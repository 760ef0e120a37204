package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cwbudde/beecolony/internal/config"
	"github.com/cwbudde/beecolony/internal/metrics"
	"github.com/cwbudde/beecolony/internal/runner"
	"github.com/cwbudde/beecolony/internal/store"
)

var (
	resumeConfigPath string
	resumeDataDir    string
	resumeRounds     int
	resumeIterations int
)

var resumeCmd = &cobra.Command{
	Use:   "resume <job-id>",
	Short: "Continue a checkpointed run",
	Long: `Restores the colony saved for a job and runs further rounds on it. The
stored run file is reused unless --config is given; --rounds and --iterations
override it. Changing the problem, dimension, colony size or direction is
rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: resumeOptimization,
}

func init() {
	resumeCmd.Flags().StringVarP(&resumeConfigPath, "config", "c", "", "YAML run file replacing the stored one")
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoints and traces")
	resumeCmd.Flags().IntVar(&resumeRounds, "rounds", 0, "Number of further rounds")
	resumeCmd.Flags().IntVar(&resumeIterations, "iterations", 0, "Iterations per round")
	resumeCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")

	rootCmd.AddCommand(resumeCmd)
}

func resumeOptimization(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	fsStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}
	cp, err := fsStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	override := cp.Run
	if resumeConfigPath != "" {
		loaded, err := config.Load(resumeConfigPath)
		if err != nil {
			return err
		}
		override = loaded
	}
	if cmd.Flags().Changed("rounds") {
		override.Rounds = resumeRounds
	}
	if cmd.Flags().Changed("iterations") {
		override.Iterations = resumeIterations
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := runner.Options{
		Store:    fsStore,
		TraceDir: fsStore.BaseDir(),
		Registry: runner.NewRegistry(),
		Logger:   currentLogger(),
	}
	if metricsAddr != "" {
		opts.Metrics = metrics.NewCollector(nil)
		shutdown, err := serveMetrics(metricsAddr, opts.Metrics.Handler())
		if err != nil {
			return err
		}
		defer shutdown()
	}

	res, err := runner.Resume(ctx, jobID, &override, opts)
	if res != nil {
		printResults(out(cmd), []*runner.Result{res})
	}
	return err
}
