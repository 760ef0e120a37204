package store

import "path/filepath"

const (
	jobsDirName        = "jobs"
	checkpointFileName = "checkpoint.json"
	traceFileName      = "trace.jsonl"
)

// JobDir returns <baseDir>/jobs/<jobID>, the directory holding a job's
// checkpoint and trace.
func JobDir(baseDir, jobID string) string {
	return filepath.Join(baseDir, jobsDirName, jobID)
}

// CheckpointPath returns <baseDir>/jobs/<jobID>/checkpoint.json.
func CheckpointPath(baseDir, jobID string) string {
	return filepath.Join(JobDir(baseDir, jobID), checkpointFileName)
}

// TracePath returns <baseDir>/jobs/<jobID>/trace.jsonl.
func TracePath(baseDir, jobID string) string {
	return filepath.Join(JobDir(baseDir, jobID), traceFileName)
}
