package repository

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
)

// MemoryJobRepository keeps jobs in a map guarded by an RWMutex.
type MemoryJobRepository struct {
	mu    sync.RWMutex
	jobs  map[string]*entity.Job
	order []string // insertion order
	log   *slog.Logger
	now   func() time.Time
}

func NewMemoryJobRepository(logger *slog.Logger) *MemoryJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryJobRepository{
		jobs: make(map[string]*entity.Job),
		log:  logger,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryJobRepository) Create(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("job %q already exists", job.ID)
	}
	r.jobs[job.ID] = job.Clone()
	r.order = append(r.order, job.ID)
	r.log.Debug("job_repo.create", "job_id", job.ID, "status", job.Status)
	return nil
}

func (r *MemoryJobRepository) Get(_ context.Context, id string) (*entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, notFound(id)
	}
	return j.Clone(), nil
}

func (r *MemoryJobRepository) List(_ context.Context) ([]*entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Job, 0, len(r.order))
	for _, id := range slices.Backward(r.order) {
		out = append(out, r.jobs[id].Clone())
	}
	return out, nil
}

func (r *MemoryJobRepository) Start(_ context.Context, id string) error {
	return r.mutate(id, func(j *entity.Job) error {
		if j.Status != constants.JobStatusPending {
			return fmt.Errorf("start job %q: status is %s", id, j.Status)
		}
		j.Status = constants.JobStatusProcessing
		return nil
	})
}

func (r *MemoryJobRepository) SetProgress(_ context.Context, id string, progress int) error {
	return r.mutate(id, func(j *entity.Job) error {
		j.Progress = max(j.Progress, clampProgress(progress))
		return nil
	})
}

func (r *MemoryJobRepository) Complete(_ context.Context, id string, results []entity.PartRecord) error {
	if len(results) == 0 {
		return fmt.Errorf("complete job %q: results must not be empty", id)
	}
	return r.mutate(id, func(j *entity.Job) error {
		now := r.now()
		j.Status = constants.JobStatusCompleted
		j.Progress = 100
		j.Results = slices.Clone(results)
		j.FinishedAt = &now
		return nil
	})
}

func (r *MemoryJobRepository) Fail(_ context.Context, id string, message string) error {
	return r.mutate(id, func(j *entity.Job) error {
		now := r.now()
		msg := message
		j.Status = constants.JobStatusFailed
		j.Results = []entity.PartRecord{}
		j.Error = &msg
		j.FinishedAt = &now
		return nil
	})
}

// HealthCheck always succeeds; the store lives in process memory.
func (r *MemoryJobRepository) HealthCheck(context.Context, time.Duration) error { return nil }

func (r *MemoryJobRepository) Close() error { return nil }

// mutate applies fn to the stored job unless it is terminal.
func (r *MemoryJobRepository) mutate(id string, fn func(j *entity.Job) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return notFound(id)
	}
	if j.Status.IsTerminal() {
		return fmt.Errorf("job %q: %w", id, ErrJobTerminal)
	}
	next := j.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.UpdatedAt = r.now()
	r.jobs[id] = next
	return nil
}
