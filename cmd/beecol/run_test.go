package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/cwbudde/beecolony/internal/config"
	"github.com/cwbudde/beecolony/internal/runner"
	"github.com/cwbudde/beecolony/pkg/abc"
)

func flagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "run"}
	addRunFileFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	return cmd
}

func TestLoadRunFileAppliesChangedFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	yaml := "problem: rastrigin\ndim: 4\niterations: 30\ncolony_size: 20\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write run file: %v", err)
	}

	original := runConfigPath
	runConfigPath = path
	t.Cleanup(func() { runConfigPath = original })

	run, err := loadRunFile(flagCmd(t, "--iterations", "7", "--seed", "9"))
	if err != nil {
		t.Fatalf("loadRunFile failed: %v", err)
	}
	if run.Problem != "rastrigin" || run.Dim != 4 || run.ColonySize != 20 {
		t.Errorf("Run file values lost: %+v", run)
	}
	if run.Iterations != 7 {
		t.Errorf("Iterations = %d, want 7", run.Iterations)
	}
	if run.Seed == nil || *run.Seed != 9 {
		t.Errorf("Seed = %v, want 9", run.Seed)
	}
}

func TestLoadRunFileRejectsInvalidFlags(t *testing.T) {
	original := runConfigPath
	runConfigPath = ""
	t.Cleanup(func() { runConfigPath = original })

	_, err := loadRunFile(flagCmd(t, "--colony-size", "7"))
	if err == nil {
		t.Fatal("Expected odd colony size to be rejected")
	}
	var cfgErr *abc.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "colony_size" {
		t.Errorf("Expected colony_size config error, got %v", err)
	}
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, []*runner.Result{
		{
			JobID:  "job-1",
			State:  runner.StateCompleted,
			Round:  2,
			Best:   abc.Solution{Position: []float64{0.5, -1}, Cost: 1.25},
			Status: abc.Status{Iterations: 10, ScoutEvents: 3},
		},
		{
			JobID:  "job-2",
			State:  runner.StateConverged,
			Binary: &abc.BinarySolution{Bits: []bool{true, false, true}, Cost: 2},
		},
		nil,
	})

	output := buf.String()
	for _, want := range []string{"job-1", "completed", "[0.5 -1]", "1.25", "job-2", "converged", "101"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
}

func TestPrintJobs(t *testing.T) {
	reg := runner.NewRegistry()
	run := config.Default()
	seed := int64(11)
	run.Seed = &seed
	ok := reg.Create("job-ok", run)
	reg.Create("job-failed", config.Default())
	_ = reg.Update(ok.ID, func(j *runner.Job) {
		j.State = runner.StateCompleted
		j.Round = 3
		j.Best = abc.Solution{Position: []float64{0}, Cost: 0.125}
	})
	_ = reg.Update("job-failed", func(j *runner.Job) {
		j.State = runner.StateFailed
		j.Error = "boom"
	})

	var buf bytes.Buffer
	printJobs(&buf, reg.List())

	output := buf.String()
	for _, want := range []string{"job-ok", "11", "completed", "0.125", "job-failed", "failed", "boom"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
}
