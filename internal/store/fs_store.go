package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// FSStore keeps one directory per job under <baseDir>/jobs: checkpoint.json
// next to the trace.jsonl written by TraceWriter.
//
// Checkpoints are replaced by rename, so concurrent saves for different jobs
// need no locking and a crash never leaves a half-written checkpoint.
type FSStore struct {
	baseDir string
}

// NewFSStore creates baseDir if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// BaseDir returns the root directory of the store. Pass it as the trace
// directory so traces land next to their checkpoints.
func (s *FSStore) BaseDir() string {
	return s.baseDir
}

func requireJobID(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}
	return nil
}

// SaveCheckpoint validates cp and replaces the job's checkpoint.json.
func (s *FSStore) SaveCheckpoint(jobID string, cp *Checkpoint) error {
	if err := requireJobID(jobID); err != nil {
		return err
	}
	if cp == nil {
		return fmt.Errorf("checkpoint cannot be nil")
	}
	if cp.JobID != jobID {
		return &ValidationError{Field: "JobID", Reason: fmt.Sprintf("%q does not match %q", cp.JobID, jobID)}
	}
	if err := cp.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid checkpoint: %w", err)
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint: %w", err)
	}
	path := CheckpointPath(s.baseDir, jobID)
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}

	slog.Debug("Checkpoint saved",
		"job_id", jobID,
		"round", cp.Round,
		"iteration", cp.Iteration,
		"bytes", len(data),
	)
	return nil
}

// writeFileAtomic writes data to path.tmp and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp checkpoint file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename checkpoint file: %w", err)
	}
	return nil
}

// LoadCheckpoint reads and validates the job's checkpoint.
func (s *FSStore) LoadCheckpoint(jobID string) (*Checkpoint, error) {
	if err := requireJobID(jobID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(CheckpointPath(s.baseDir, jobID))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &NotFoundError{JobID: jobID}
	case err != nil:
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	cp := new(Checkpoint)
	if err := json.Unmarshal(data, cp); err != nil {
		return nil, fmt.Errorf("failed to deserialize checkpoint: %w", err)
	}
	if err := cp.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint %s is invalid: %w", jobID, err)
	}
	return cp, nil
}

// ListCheckpoints loads every job directory that has a checkpoint. Trace-only
// directories are ignored and unreadable checkpoints are skipped with a warning.
func (s *FSStore) ListCheckpoints() ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, jobsDirName))
	if errors.Is(err, fs.ErrNotExist) {
		return []CheckpointInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs directory: %w", err)
	}

	infos := make([]CheckpointInfo, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		cp, err := s.LoadCheckpoint(e.Name())
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			slog.Warn("Skipping unreadable checkpoint", "job_id", e.Name(), "error", err)
			continue
		}
		infos = append(infos, cp.ToInfo())
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})
	return infos, nil
}

// DeleteCheckpoint removes the whole job directory, trace included.
func (s *FSStore) DeleteCheckpoint(jobID string) error {
	if err := requireJobID(jobID); err != nil {
		return err
	}

	dir := JobDir(s.baseDir, jobID)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return &NotFoundError{JobID: jobID}
	} else if err != nil {
		return fmt.Errorf("failed to stat job directory: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove job directory: %w", err)
	}

	slog.Debug("Job directory deleted", "job_id", jobID)
	return nil
}
