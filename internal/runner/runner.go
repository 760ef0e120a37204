// Package runner drives colonies in rounds of Fit calls with convergence
// detection, checkpoints, traces and metrics, and runs independent colonies
// concurrently for seed sweeps and optimizer comparisons.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/beecolony/internal/config"
	"github.com/cwbudde/beecolony/internal/metrics"
	"github.com/cwbudde/beecolony/internal/store"
	"github.com/cwbudde/beecolony/pkg/abc"
)

// Options wires the optional side channels of a run. The zero value runs
// without persistence or metrics.
type Options struct {
	// Store receives a checkpoint after every round.
	Store store.Store

	// TraceDir is the store base directory for trace.jsonl. Empty disables
	// the trace.
	TraceDir string

	Metrics  *metrics.Collector
	Registry *Registry
	Logger   *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) registry() *Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return NewRegistry()
}

// Result summarizes a finished (or interrupted) run.
type Result struct {
	JobID  string
	State  JobState
	Best   abc.Solution
	Binary *abc.BinarySolution
	Status abc.Status
	// Round is the total number of completed rounds, including those of
	// earlier sessions of a resumed job.
	Round   int
	History []float64
	Elapsed time.Duration
}

// Run builds a new colony from run and executes run.Rounds rounds. The job
// ID is a fresh UUID.
func Run(ctx context.Context, run config.RunFile, opts Options) (*Result, error) {
	if err := run.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run: %w", err)
	}
	eng, err := newEngine(run, opts.logger(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build colony: %w", err)
	}

	reg := opts.registry()
	job := reg.Create("", run)
	opts.logger().Info("Starting run",
		"job_id", job.ID,
		"kind", run.Kind,
		"problem", run.Problem,
		"dimension", run.Dimension(),
		"rounds", run.Rounds,
		"iterations", run.Iterations,
	)
	return execute(ctx, reg, job.ID, run, eng, 0, false, opts)
}

// Resume loads a job's checkpoint and runs further rounds on the restored
// colony. override replaces the stored run file when it is compatible, for
// example to change Iterations or Rounds; nil reuses the stored one.
func Resume(ctx context.Context, jobID string, override *config.RunFile, opts Options) (*Result, error) {
	if opts.Store == nil {
		return nil, errors.New("resume needs a checkpoint store")
	}
	reg := opts.registry()
	if job, ok := reg.Get(jobID); ok && !job.State.Done() {
		return nil, fmt.Errorf("job %s is %s and cannot be resumed", jobID, job.State)
	}
	cp, err := opts.Store.LoadCheckpoint(jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	run := cp.Run
	if override != nil {
		if err := override.Validate(); err != nil {
			return nil, fmt.Errorf("invalid run: %w", err)
		}
		if err := cp.IsCompatible(*override); err != nil {
			return nil, err
		}
		run = *override
	}

	eng, err := newEngine(run, opts.logger(), cp.State)
	if err != nil {
		return nil, fmt.Errorf("failed to restore colony: %w", err)
	}

	reg.Create(jobID, run)
	opts.logger().Info("Resuming run",
		"job_id", jobID,
		"round", cp.Round,
		"iteration", cp.Iteration,
		"best_cost", eng.cost(),
	)
	return execute(ctx, reg, jobID, run, eng, cp.Round, true, opts)
}

func execute(ctx context.Context, reg *Registry, jobID string, run config.RunFile, eng engine, startRound int, resumed bool, opts Options) (*Result, error) {
	logger := opts.logger().With("job_id", jobID)
	start := time.Now()
	_ = reg.Update(jobID, func(j *Job) { j.State = StateRunning })

	var trace *store.TraceWriter
	if opts.TraceDir != "" {
		tw, err := store.NewTraceWriter(opts.TraceDir, jobID, resumed)
		if err != nil {
			reg.finish(jobID, StateFailed, err)
			return nil, err
		}
		trace = tw
		defer trace.Close()
	}

	dir := abc.Minimize
	if run.Direction == "max" {
		dir = abc.Maximize
	}
	tracker := NewConvergenceTracker(run.Convergence, dir, logger)

	res := &Result{JobID: jobID, State: StateCompleted, Round: startRound}
	var runErr error

	for r := 1; r <= run.Rounds; r++ {
		roundStart := time.Now()
		fitErr := eng.fit(ctx)
		elapsed := time.Since(roundStart)

		if fitErr == nil {
			res.Round = startRound + r
		}
		status, best, cost := eng.status(), eng.best(), eng.cost()

		_ = reg.Update(jobID, func(j *Job) {
			j.Best = best
			j.Binary = eng.binary()
			j.Status = status
			j.Round = res.Round
		})

		if fitErr == nil && trace != nil {
			entry := store.TraceEntry{
				Round:     res.Round,
				Status:    status,
				Best:      best,
				Elapsed:   elapsed,
				Timestamp: time.Now(),
			}
			if bin := eng.binary(); bin != nil {
				entry.Bits = bin.Bits
			}
			if err := trace.Write(entry); err != nil {
				runErr = err
				break
			}
		}
		if opts.Metrics != nil {
			opts.Metrics.Observe(jobID, run.Problem, status, cost, elapsed.Seconds())
		}
		if opts.Store != nil {
			if err := saveCheckpoint(opts.Store, jobID, run, eng, res.Round); err != nil {
				runErr = err
				break
			}
		}

		if fitErr != nil {
			runErr = fitErr
			break
		}

		logger.Debug("Round complete",
			"round", res.Round,
			"iterations", status.Iterations,
			"scout_events", status.ScoutEvents,
			"nan_events", status.NaNEvents,
			"best_cost", cost,
			"elapsed", elapsed,
		)

		if tracker.Update(cost) {
			res.State = StateConverged
			break
		}
	}

	res.Best = eng.best()
	res.Binary = eng.binary()
	res.Status = eng.status()
	res.History = tracker.History()
	res.Elapsed = time.Since(start)

	if runErr != nil {
		res.State = StateFailed
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			res.State = StateCancelled
		}
		reg.finish(jobID, res.State, runErr)
		logger.Warn("Run stopped", "state", res.State, "round", res.Round, "error", runErr)
		return res, runErr
	}

	reg.finish(jobID, res.State, nil)
	logger.Info("Run complete",
		"state", res.State,
		"rounds", res.Round,
		"iterations", res.Status.Iterations,
		"scout_events", res.Status.ScoutEvents,
		"nan_events", res.Status.NaNEvents,
		"best_cost", eng.cost(),
		"stale_rounds", tracker.StaleCount(),
		"elapsed", res.Elapsed,
	)
	return res, nil
}

func saveCheckpoint(s store.Store, jobID string, run config.RunFile, eng engine, round int) error {
	st, err := eng.state()
	if err != nil {
		return fmt.Errorf("failed to capture colony: %w", err)
	}
	cp := store.NewCheckpoint(jobID, run, st, eng.best(), round)
	if err := s.SaveCheckpoint(jobID, cp); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}
