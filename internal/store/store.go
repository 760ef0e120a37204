// Package store persists colony checkpoints and per-round traces on disk.
package store

import (
	"sort"
	"time"
)

// Store defines the interface for checkpoint persistence operations.
// Implementations must be thread-safe: a seed sweep saves checkpoints for
// several jobs concurrently.
//
// Errors are wrapped with fmt.Errorf("context: %w", err); a missing job
// reports ErrNotFound.
type Store interface {
	// SaveCheckpoint atomically saves a checkpoint for the given job,
	// overwriting any previous one. The checkpoint is validated first.
	SaveCheckpoint(jobID string, checkpoint *Checkpoint) error

	// LoadCheckpoint retrieves and validates the checkpoint for the given job.
	LoadCheckpoint(jobID string) (*Checkpoint, error)

	// ListCheckpoints returns metadata for all readable checkpoints, newest
	// first. Corrupt checkpoints are skipped with a warning.
	ListCheckpoints() ([]CheckpointInfo, error)

	// DeleteCheckpoint removes the job directory with its checkpoint.json
	// and trace.jsonl.
	DeleteCheckpoint(jobID string) error
}

// ErrNotFound is returned when a requested checkpoint does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing checkpoint error.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	if e.JobID != "" {
		return "checkpoint not found: " + e.JobID
	}
	return "checkpoint not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// Retention selects checkpoints for deletion. Zero fields are disabled.
type Retention struct {
	// KeepLast keeps the N most recent checkpoints.
	KeepLast int
	// OlderThan deletes checkpoints created before now minus OlderThan.
	OlderThan time.Duration
}

// Select returns the checkpoints the policy deletes, oldest first. A
// checkpoint matched by both rules is returned once.
func (r Retention) Select(infos []CheckpointInfo, now time.Time) []CheckpointInfo {
	sorted := make([]CheckpointInfo, len(infos))
	copy(sorted, infos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	excess := 0
	if r.KeepLast > 0 && len(sorted) > r.KeepLast {
		excess = len(sorted) - r.KeepLast
	}
	cutoff := now.Add(-r.OlderThan)

	var toDelete []CheckpointInfo
	for i, info := range sorted {
		if i < excess || (r.OlderThan > 0 && info.Timestamp.Before(cutoff)) {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}
