package registry

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/answerlab/evald/internal/model"
)

// ErrNotFound is returned when a job id is unknown to the registry.
var ErrNotFound = errors.New("job not found")

// ErrInvalidTransition is returned when a job state transition is not allowed.
var ErrInvalidTransition = errors.New("invalid state transition")

// Stats holds aggregate counts over all jobs in the registry.
type Stats struct {
	Total   int            `json:"total"`
	ByState map[string]int `json:"by_state"`
}

// Registry is the in-memory source of truth for job lifecycle state. Records
// live for the process lifetime and are never evicted. A single lock guards
// both the map structure and record fields; readers always receive snapshot
// copies, never the stored record itself.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

// New creates an empty job registry.
func New() *Registry {
	return &Registry{
		jobs: make(map[string]*model.Job),
	}
}

// Create allocates a fresh id and inserts a PENDING record storing the
// caller's inputs verbatim. It returns a snapshot of the new record, so a
// submitter can poll for the id immediately.
func (r *Registry) Create(inputs json.RawMessage) *model.Job {
	j := &model.Job{
		ID:        model.NewID(),
		State:     model.StatePending,
		Inputs:    inputs,
		StartedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
	return snapshot(j)
}

// Get returns a snapshot of the job with the given id.
func (r *Registry) Get(id string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(j), nil
}

// MarkRunning transitions a job from PENDING to RUNNING.
func (r *Registry) MarkRunning(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if !model.ValidTransition(j.State, model.StateRunning) {
		return ErrInvalidTransition
	}
	j.State = model.StateRunning
	return nil
}

// MarkSucceeded transitions a job from RUNNING to SUCCESS, recording the
// workflow output and the completion time.
func (r *Registry) MarkSucceeded(id, output, taskName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if !model.ValidTransition(j.State, model.StateSuccess) {
		return ErrInvalidTransition
	}

	now := time.Now().UTC()
	j.State = model.StateSuccess
	j.Result = &model.TaskOutput{Output: output, TaskName: taskName}
	j.CompletedAt = &now
	return nil
}

// MarkFailed transitions a job from PENDING or RUNNING to FAILED, recording
// the failure description and the completion time.
func (r *Registry) MarkFailed(id, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if !model.ValidTransition(j.State, model.StateFailed) {
		return ErrInvalidTransition
	}

	now := time.Now().UTC()
	j.State = model.StateFailed
	j.Error = errMsg
	j.CompletedAt = &now
	return nil
}

// Stats returns the total job count and a per-state breakdown.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		Total:   len(r.jobs),
		ByState: make(map[string]int),
	}
	for _, j := range r.jobs {
		s.ByState[j.State]++
	}
	return s
}

// Len returns the number of jobs held by the registry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// snapshot returns a copy of the job that callers may hold without racing
// against the owning worker. Inputs is shared because it is immutable after
// creation.
func snapshot(j *model.Job) *model.Job {
	c := *j
	if j.Result != nil {
		res := *j.Result
		c.Result = &res
	}
	if j.CompletedAt != nil {
		ts := *j.CompletedAt
		c.CompletedAt = &ts
	}
	return &c
}
