package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/rspl-generator/internal/common"
)

// Runner starts one goroutine per task. There is no worker limit and no
// per-task timeout; a run ends when the pipeline reaches a terminal state.
type Runner struct {
	run    RunFunc
	logger *slog.Logger

	base   context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup
	mu sync.Mutex
	// guarded by mu
	closed bool
}

type Option func(*Runner)

// WithBaseContext sets the parent of every run's context.
func WithBaseContext(ctx context.Context) Option {
	return func(r *Runner) {
		if ctx != nil {
			r.base = ctx
		}
	}
}

func NewRunner(run RunFunc, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		run:    run,
		logger: logger,
		base:   context.Background(),
	}
	for _, o := range opts {
		o(r)
	}
	r.base, r.cancel = context.WithCancel(r.base)
	return r
}

// Enqueue starts the task in the background. The caller's ctx only carries
// values; its cancellation does not stop the run.
func (r *Runner) Enqueue(ctx context.Context, task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.logger.Warn("cannot enqueue: runner is shutting down", "job_id", task.JobID)
		return ErrShuttingDown
	}
	if task.SubmittedAt.IsZero() {
		task.SubmittedAt = time.Now()
	}
	if task.RequestID == "" {
		task.RequestID = common.RequestIDFromContext(ctx)
	}

	runCtx := common.WithJobID(r.base, task.JobID)
	if task.RequestID != "" {
		runCtx = common.WithRequestID(runCtx, task.RequestID)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		start := time.Now()
		if err := r.run(runCtx, task.JobID); err != nil {
			r.logger.Error("async.run.failed",
				"job_id", task.JobID,
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return
		}
		r.logger.Info("async.run.done",
			"job_id", task.JobID,
			"queued_ms", start.Sub(task.SubmittedAt).Milliseconds(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}()
	r.logger.Debug("async.run.queued", "job_id", task.JobID)
	return nil
}

// Wait blocks until every started run has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Shutdown rejects new tasks and waits for running ones. If ctx expires first,
// the runs' context is cancelled so stage delays return early.
func (r *Runner) Shutdown(ctx context.Context) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); r.wg.Wait() }()

	select {
	case <-ctx.Done():
		r.logger.Warn("shutdown interrupted by context, cancelling running jobs")
		r.cancel()
		<-done
	case <-done:
		r.logger.Info("runner drained, shutdown complete")
	}
	r.cancel()
}
