package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/beecolony/internal/config"
	"github.com/cwbudde/beecolony/internal/runner"
	"github.com/cwbudde/beecolony/internal/store"
)

// runJob executes a short checkpointed run into dir and returns its job ID.
func runJob(t *testing.T, dir string, seed int64) string {
	t.Helper()

	fsStore, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	run := config.Default()
	run.ColonySize = 10
	run.Iterations = 5
	run.Seed = &seed

	res, err := runner.Run(context.Background(), run, runner.Options{Store: fsStore, TraceDir: dir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res.JobID
}

// backdate rewrites a checkpoint's timestamp.
func backdate(t *testing.T, dir, jobID string, age time.Duration) {
	t.Helper()

	fsStore, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	cp, err := fsStore.LoadCheckpoint(jobID)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	cp.Timestamp = time.Now().Add(-age)
	if err := fsStore.SaveCheckpoint(jobID, cp); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}
}

func bufferedCmd(input string) (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetIn(strings.NewReader(input))
	return cmd, &buf
}

func withDataDir(t *testing.T, dir string) {
	t.Helper()
	original := checkpointDataDir
	checkpointDataDir = dir
	t.Cleanup(func() { checkpointDataDir = original })
}

func withCleanFlags(t *testing.T, keep, days int, force bool) {
	t.Helper()
	k, d, f := keepLast, olderThanDays, forceClean
	keepLast, olderThanDays, forceClean = keep, days, force
	t.Cleanup(func() { keepLast, olderThanDays, forceClean = k, d, f })
}

func TestGetDirSize(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "test.txt")
	content := []byte("Hello, World!")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	size, err := getDirSize(tmpDir)
	if err != nil {
		t.Fatalf("getDirSize failed: %v", err)
	}
	if size < int64(len(content)) {
		t.Errorf("Expected size >= %d, got %d", len(content), size)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		result := formatBytes(tt.bytes)
		if result != tt.expected {
			t.Errorf("formatBytes(%d) = %s, expected %s", tt.bytes, result, tt.expected)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(abc) = %s", got)
	}
	if got := shortID("0123456789abcdef"); got != "0123456789ab..." {
		t.Errorf("shortID truncated to %s", got)
	}
}

func TestCheckpointsListCommand_NoCheckpoints(t *testing.T) {
	withDataDir(t, t.TempDir())

	cmd, buf := bufferedCmd("")
	if err := runListCheckpoints(cmd, nil); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No checkpoints found.") {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}

func TestCheckpointsListCommand_WithCheckpoints(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := runJob(t, tmpDir, 1)
	withDataDir(t, tmpDir)

	cmd, buf := bufferedCmd("")
	if err := runListCheckpoints(cmd, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, shortID(jobID)) {
		t.Errorf("Expected job %s in output:\n%s", jobID, output)
	}
	if !strings.Contains(output, "sphere") {
		t.Errorf("Expected problem name in output:\n%s", output)
	}
	if !strings.Contains(output, "Total checkpoints: 1") {
		t.Errorf("Expected total in output:\n%s", output)
	}
}

func TestCheckpointsShowCommand(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := runJob(t, tmpDir, 2)
	withDataDir(t, tmpDir)

	cmd, buf := bufferedCmd("")
	if err := runShowCheckpoint(cmd, []string{jobID}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), `"jobId": "`+jobID+`"`) {
		t.Errorf("Expected job ID in JSON:\n%s", buf.String())
	}

	if err := runShowCheckpoint(cmd, []string{"missing"}); err == nil {
		t.Error("Expected error for missing checkpoint")
	}
}

func TestCheckpointsCleanCommand_NoFlags(t *testing.T) {
	withDataDir(t, t.TempDir())
	withCleanFlags(t, 0, 0, false)

	if err := runCleanCheckpoints(nil, nil); err == nil {
		t.Error("Expected error when no flags specified")
	}
}

func TestCheckpointsCleanCommand_WithForce(t *testing.T) {
	tmpDir := t.TempDir()
	oldJob := runJob(t, tmpDir, 3)
	newJob := runJob(t, tmpDir, 4)
	backdate(t, tmpDir, oldJob, 30*24*time.Hour)

	withDataDir(t, tmpDir)
	withCleanFlags(t, 0, 7, true)

	cmd, _ := bufferedCmd("")
	if err := runCleanCheckpoints(cmd, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	fsStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := fsStore.LoadCheckpoint(oldJob); err == nil {
		t.Error("Expected old checkpoint to be deleted")
	}
	if _, err := fsStore.LoadCheckpoint(newJob); err != nil {
		t.Errorf("Expected recent checkpoint to survive, got %v", err)
	}
}

func TestCheckpointsCleanCommand_Declined(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := runJob(t, tmpDir, 5)
	backdate(t, tmpDir, jobID, 30*24*time.Hour)

	withDataDir(t, tmpDir)
	withCleanFlags(t, 0, 7, false)

	cmd, buf := bufferedCmd("n\n")
	if err := runCleanCheckpoints(cmd, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Aborted.") {
		t.Errorf("Expected abort message:\n%s", buf.String())
	}

	fsStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := fsStore.LoadCheckpoint(jobID); err != nil {
		t.Errorf("Expected checkpoint to survive, got %v", err)
	}
}

func TestCheckpointsCleanCommand_KeepLastConfirmed(t *testing.T) {
	tmpDir := t.TempDir()
	first := runJob(t, tmpDir, 6)
	second := runJob(t, tmpDir, 7)
	backdate(t, tmpDir, first, time.Hour)

	withDataDir(t, tmpDir)
	withCleanFlags(t, 1, 0, false)

	cmd, _ := bufferedCmd("y\n")
	if err := runCleanCheckpoints(cmd, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	fsStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	infos, err := fsStore.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints failed: %v", err)
	}
	if len(infos) != 1 || infos[0].JobID != second {
		t.Errorf("Expected only %s to remain, got %+v", second, infos)
	}
}
