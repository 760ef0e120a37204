package runner

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/beecolony/internal/config"
	"github.com/cwbudde/beecolony/pkg/abc"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateConverged JobState = "converged"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// Done reports whether the job reached a final state.
func (s JobState) Done() bool {
	switch s {
	case StateCompleted, StateConverged, StateFailed, StateCancelled:
		return true
	}
	return false
}

// Job is the live view of one run.
type Job struct {
	ID        string              `json:"id"`
	State     JobState            `json:"state"`
	Run       config.RunFile      `json:"run"`
	Best      abc.Solution        `json:"best"`
	Binary    *abc.BinarySolution `json:"binary,omitempty"`
	Status    abc.Status          `json:"status"`
	Round     int                 `json:"round"`
	StartTime time.Time           `json:"startTime"`
	EndTime   *time.Time          `json:"endTime,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// Registry tracks the jobs of one process. A sweep updates it from several
// goroutines.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Create registers a pending job. An empty id gets a new UUID.
func (r *Registry) Create(id string, run config.RunFile) *Job {
	if id == "" {
		id = uuid.New().String()
	}
	job := &Job{
		ID:        id,
		State:     StatePending,
		Run:       run,
		StartTime: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = job
	return job
}

// Get returns a copy of the job.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// List returns copies of all jobs, oldest first.
func (r *Registry) List() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].StartTime.Equal(jobs[j].StartTime) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].StartTime.Before(jobs[j].StartTime)
	})
	return jobs
}

// Update atomically applies fn to the job.
func (r *Registry) Update(id string, fn func(*Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job not found: %s", id)
	}
	fn(job)
	return nil
}

// finish moves a job into a final state.
func (r *Registry) finish(id string, state JobState, err error) {
	end := time.Now()
	_ = r.Update(id, func(j *Job) {
		j.State = state
		j.EndTime = &end
		if err != nil {
			j.Error = err.Error()
		}
	})
}
