package runner

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/answerlab/evald/internal/registry"
	"github.com/answerlab/evald/internal/workflow"
)

// Runner turns submissions into tracked, asynchronously executing jobs.
type Runner struct {
	registry *registry.Registry
	workflow workflow.Runner
	logger   *slog.Logger
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
}

// New creates a runner. maxWorkers caps the number of concurrently running
// workflow invocations; 0 leaves concurrency unbounded. Queued jobs hold
// PENDING until a slot frees up.
func New(reg *registry.Registry, wf workflow.Runner, logger *slog.Logger, maxWorkers int64) *Runner {
	r := &Runner{
		registry: reg,
		workflow: wf,
		logger:   logger,
	}
	if maxWorkers > 0 {
		r.sem = semaphore.NewWeighted(maxWorkers)
	}
	return r
}

// Submit creates a PENDING job record and launches asynchronous execution in
// a goroutine. It returns the job id immediately; workflow latency is never
// visible to the caller. The record exists before the goroutine is scheduled,
// so an immediate status poll always finds the id.
func (r *Runner) Submit(inputs json.RawMessage) string {
	j := r.registry.Create(inputs)
	jobsSubmitted.Inc()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(j.ID, inputs)
	}()

	return j.ID
}

// Wait blocks until all in-flight job goroutines complete. Used to drain
// executions during graceful shutdown.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// execute runs the job lifecycle in its own goroutine:
// PENDING → RUNNING → SUCCESS or FAILED. Workflow failures are contained
// here; they never propagate past the job's own record.
func (r *Runner) execute(id string, inputs json.RawMessage) {
	if r.sem != nil {
		if err := r.sem.Acquire(context.Background(), 1); err != nil {
			r.finishFailed(id, "acquire worker slot: "+err.Error())
			return
		}
		defer r.sem.Release(1)
	}

	if err := r.registry.MarkRunning(id); err != nil {
		r.logger.Error("failed to transition to running", "job_id", id, "error", err)
		r.finishFailed(id, "failed to start: "+err.Error())
		return
	}

	jobsInFlight.Inc()
	defer jobsInFlight.Dec()

	start := time.Now()
	res, err := r.workflow.Run(context.Background(), inputs)
	workflowDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		r.logger.Error("workflow execution failed", "job_id", id, "error", err)
		r.finishFailed(id, err.Error())
		return
	}

	if err := r.registry.MarkSucceeded(id, res.Raw, res.TaskName); err != nil {
		r.logger.Error("failed to record success", "job_id", id, "error", err)
		return
	}
	jobsCompleted.WithLabelValues("success").Inc()
	r.logger.Info("job completed", "job_id", id, "task_name", res.TaskName)
}

// finishFailed marks a job as failed with the given error message.
func (r *Runner) finishFailed(id, errMsg string) {
	if err := r.registry.MarkFailed(id, errMsg); err != nil {
		r.logger.Error("failed to record failure", "job_id", id, "error", err)
		return
	}
	jobsCompleted.WithLabelValues("failed").Inc()
}
