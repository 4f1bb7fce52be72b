package model

import (
	"encoding/json"
	"time"
)

// Job state constants. These are the wire values returned by the status API.
const (
	StatePending = "PENDING"
	StateRunning = "RUNNING"
	StateSuccess = "SUCCESS"
	StateFailed  = "FAILED"
)

// validTransitions maps each state to the set of states it may transition to.
// SUCCESS and FAILED are terminal: nothing transitions out of them.
var validTransitions = map[string]map[string]bool{
	StatePending: {
		StateRunning: true,
		StateFailed:  true,
	},
	StateRunning: {
		StateSuccess: true,
		StateFailed:  true,
	},
}

// ValidTransition reports whether transitioning from one state to another is allowed.
func ValidTransition(from, to string) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Terminal reports whether a state admits no further transitions.
func Terminal(state string) bool {
	return state == StateSuccess || state == StateFailed
}

// TaskOutput holds the output of the last task executed by the workflow.
type TaskOutput struct {
	Output   string `json:"output"`
	TaskName string `json:"task_name"`
}

// Job represents one submitted evaluation request tracked by the registry.
// Result and Error are mutually exclusive and both absent until the job
// reaches a terminal state. CompletedAt is set exactly once, at the
// transition into SUCCESS or FAILED.
type Job struct {
	ID          string          `json:"id"`
	State       string          `json:"state"`
	Inputs      json.RawMessage `json:"inputs,omitempty"`
	Result      *TaskOutput     `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
