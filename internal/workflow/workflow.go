// Package workflow is the boundary to the multi-agent evaluation pipeline
// invoked once per job. The job core only sees the Runner interface; the
// built-in Pipeline implementation chains YAML-declared agents and tasks
// against a hosted chat-completions API.
package workflow

import (
	"context"
	"encoding/json"
)

// Result holds the output of a completed workflow run.
type Result struct {
	// Raw is the raw textual output of the final task.
	Raw string
	// TaskName names the final task that produced Raw.
	TaskName string
}

// Runner executes the evaluation workflow against a submission payload.
// Implementations must be safe for concurrent use: one call per job, many
// jobs in flight.
type Runner interface {
	Run(ctx context.Context, inputs json.RawMessage) (Result, error)
}
