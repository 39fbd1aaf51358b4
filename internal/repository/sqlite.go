package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DefaultSQLiteDSN keeps the database in memory; jobs do not survive a restart.
const DefaultSQLiteDSN = "file::memory:?cache=shared"

// SQLiteJobRepository stores jobs in a single rspl_job table. Results are a JSON column.
type SQLiteJobRepository struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// OpenSQLite opens dsn, applies migrations and returns the store.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteJobRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(dsn) == "" {
		dsn = DefaultSQLiteDSN
	}
	logger.Info("connecting to job store", "driver", "sqlite", "dsn", dsn)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open job store", "error", err)
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection: an in-memory database lives and dies with its connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	r := &SQLiteJobRepository{db: db, log: logger, now: func() time.Time { return time.Now().UTC() }}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("job store ready", "driver", "sqlite")
	return r, nil
}

func (r *SQLiteJobRepository) migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		stmt, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		r.log.Debug("job store migration applied", "file", name)
	}
	return nil
}

// HealthCheck pings the database.
func (r *SQLiteJobRepository) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.db.PingContext(ctx)
}

func (r *SQLiteJobRepository) Close() error {
	r.log.Info("closing job store")
	return r.db.Close()
}

const jobColumns = `id, brand, equipment_type, source_document_name, status, progress,
	created_at, updated_at, finished_at, results, error`

func (r *SQLiteJobRepository) Create(ctx context.Context, job *entity.Job) error {
	results, err := json.Marshal(nonNilResults(job.Results))
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO rspl_job (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Brand, job.EquipmentType, job.SourceDocumentName, string(job.Status), job.Progress,
		job.CreatedAt.UnixNano(), job.UpdatedAt.UnixNano(), nullableTime(job.FinishedAt), string(results), job.Error,
	)
	if err != nil {
		r.log.Error("job_repo.create failed", "job_id", job.ID, "error", err)
		return fmt.Errorf("insert job %q: %w", job.ID, err)
	}
	return nil
}

func (r *SQLiteJobRepository) Get(ctx context.Context, id string) (*entity.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM rspl_job WHERE id = ?`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	return j, err
}

func (r *SQLiteJobRepository) List(ctx context.Context) ([]*entity.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM rspl_job ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*entity.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *SQLiteJobRepository) Start(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rspl_job SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(constants.JobStatusProcessing), r.now().UnixNano(), id, string(constants.JobStatusPending))
	return r.checkUpdate(ctx, id, res, err)
}

func (r *SQLiteJobRepository) SetProgress(ctx context.Context, id string, progress int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rspl_job SET progress = MAX(progress, ?), updated_at = ? WHERE id = ? AND status NOT IN (?, ?)`,
		clampProgress(progress), r.now().UnixNano(), id,
		string(constants.JobStatusCompleted), string(constants.JobStatusFailed))
	return r.checkUpdate(ctx, id, res, err)
}

func (r *SQLiteJobRepository) Complete(ctx context.Context, id string, results []entity.PartRecord) error {
	if len(results) == 0 {
		return fmt.Errorf("complete job %q: results must not be empty", id)
	}
	b, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	now := r.now().UnixNano()
	res, err := r.db.ExecContext(ctx,
		`UPDATE rspl_job SET status = ?, progress = 100, results = ?, updated_at = ?, finished_at = ?
		 WHERE id = ? AND status NOT IN (?, ?)`,
		string(constants.JobStatusCompleted), string(b), now, now, id,
		string(constants.JobStatusCompleted), string(constants.JobStatusFailed))
	return r.checkUpdate(ctx, id, res, err)
}

func (r *SQLiteJobRepository) Fail(ctx context.Context, id string, message string) error {
	now := r.now().UnixNano()
	res, err := r.db.ExecContext(ctx,
		`UPDATE rspl_job SET status = ?, error = ?, results = '[]', updated_at = ?, finished_at = ?
		 WHERE id = ? AND status NOT IN (?, ?)`,
		string(constants.JobStatusFailed), message, now, now, id,
		string(constants.JobStatusCompleted), string(constants.JobStatusFailed))
	return r.checkUpdate(ctx, id, res, err)
}

// checkUpdate turns "no row changed" into NotFound, ErrJobTerminal or a status conflict.
func (r *SQLiteJobRepository) checkUpdate(ctx context.Context, id string, res sql.Result, err error) error {
	if err != nil {
		r.log.Error("job_repo.update failed", "job_id", id, "error", err)
		return fmt.Errorf("update job %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job %q: %w", id, err)
	}
	if n > 0 {
		return nil
	}
	j, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if j.Status.IsTerminal() {
		return fmt.Errorf("job %q: %w", id, ErrJobTerminal)
	}
	return fmt.Errorf("job %q: unexpected status %s", id, j.Status)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(s rowScanner) (*entity.Job, error) {
	var (
		j                entity.Job
		status           string
		created, updated int64
		finished         sql.NullInt64
		results          string
		errMsg           sql.NullString
	)
	if err := s.Scan(&j.ID, &j.Brand, &j.EquipmentType, &j.SourceDocumentName, &status, &j.Progress,
		&created, &updated, &finished, &results, &errMsg); err != nil {
		return nil, err
	}
	j.Status = constants.JobStatus(status)
	j.CreatedAt = time.Unix(0, created).UTC()
	j.UpdatedAt = time.Unix(0, updated).UTC()
	if finished.Valid {
		t := time.Unix(0, finished.Int64).UTC()
		j.FinishedAt = &t
	}
	if errMsg.Valid {
		e := errMsg.String
		j.Error = &e
	}
	if err := json.Unmarshal([]byte(results), &j.Results); err != nil {
		return nil, fmt.Errorf("decode results of job %q: %w", j.ID, err)
	}
	j.Results = nonNilResults(j.Results)
	return &j, nil
}

func nonNilResults(r []entity.PartRecord) []entity.PartRecord {
	if r == nil {
		return []entity.PartRecord{}
	}
	return r
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}
