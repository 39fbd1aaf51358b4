package async

import (
	"context"
	"errors"
	"time"
)

// ErrShuttingDown is returned by Enqueue after Shutdown has begun.
var ErrShuttingDown = errors.New("runner is shutting down")

// Task identifies one pipeline run.
type Task struct {
	JobID       string
	SubmittedAt time.Time
	RequestID   string
}

// Queue schedules pipeline runs. *Runner is the in-process implementation.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	// Wait blocks until every accepted task has finished.
	Wait()
	Shutdown(ctx context.Context)
}

var _ Queue = (*Runner)(nil)

// RunFunc executes the pipeline of one job.
type RunFunc func(ctx context.Context, jobID string) error
