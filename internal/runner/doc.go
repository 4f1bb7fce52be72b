// Package runner dispatches submitted jobs onto background goroutines and
// reports their lifecycle transitions to the job registry.
package runner
