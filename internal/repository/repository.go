package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/rspl-generator/internal/common"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
)

// ErrJobTerminal is returned when mutating a Completed or Failed job.
var ErrJobTerminal = errors.New("job is in a terminal state")

// JobRepository is the process-wide job store. Every method returns or stores
// copies; callers never share a *entity.Job with the store.
type JobRepository interface {
	// Create inserts a new job. The id must be unused.
	Create(ctx context.Context, job *entity.Job) error
	Get(ctx context.Context, id string) (*entity.Job, error)
	// List returns all jobs, most recently created first.
	List(ctx context.Context) ([]*entity.Job, error)
	// Start moves a Pending job to Processing.
	Start(ctx context.Context, id string) error
	// SetProgress raises progress; a lower value is ignored.
	SetProgress(ctx context.Context, id string, progress int) error
	Complete(ctx context.Context, id string, results []entity.PartRecord) error
	Fail(ctx context.Context, id string, message string) error
	// HealthCheck reports whether the store can serve requests.
	HealthCheck(ctx context.Context, timeout time.Duration) error
	Close() error
}

// Open returns the job store selected by cfg.
func Open(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (JobRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "", common.StoreMemory:
		logger.Info("job store opened", "driver", common.StoreMemory)
		return NewMemoryJobRepository(logger), nil
	case common.StoreSQLite:
		return OpenSQLite(ctx, cfg.DSN, logger)
	}
	return nil, fmt.Errorf("unknown job store driver %q", cfg.Driver)
}

func notFound(id string) error {
	return common.NotFound("job %q not found", id)
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
