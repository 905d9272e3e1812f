package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/firstlist/presentd/internal/domain"
	"github.com/firstlist/presentd/internal/infra"
)

const pgUniqueViolation = "23505"

// JobRepositoryPG implements domain.JobRepository on PostgreSQL.
type JobRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(sql infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql}
}

// Create inserts a new job record with status PENDING.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	query := `
INSERT INTO presentation_jobs (id, user_id, prompt, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING created_at, updated_at;
`
	row := r.sql.QueryRow(ctx, query, job.ID, job.UserID, job.Prompt, job.Status)
	if err := row.Scan(&job.CreatedAt, &job.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateJob
		}
		return fmt.Errorf("%w: insert job: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
SELECT id, user_id, prompt, status, created_at, updated_at
FROM presentation_jobs
WHERE id = $1;
`
	row := r.sql.QueryRow(ctx, query, jobID)
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Prompt,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: select job: %v", domain.ErrStoreUnavailable, err)
	}
	return &job, nil
}

// AdvanceStatus moves a PENDING job into the given status. The WHERE clause
// is the terminal-state guard: a row that already reached COMPLETED or FAILED
// is left untouched and the call reports false.
func (r *JobRepositoryPG) AdvanceStatus(ctx context.Context, jobID string, status domain.Status) (bool, error) {
	query := `
UPDATE presentation_jobs
SET status = $2, updated_at = NOW()
WHERE id = $1 AND status = $3;
`
	tag, err := r.sql.Exec(ctx, query, jobID, status, domain.StatusPending)
	if err != nil {
		return false, fmt.Errorf("%w: update status: %v", domain.ErrStoreUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListStalePending returns jobs still PENDING whose last update is older than
// the cutoff, oldest first.
func (r *JobRepositoryPG) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Job, error) {
	query := `
SELECT id, user_id, prompt, status, created_at, updated_at
FROM presentation_jobs
WHERE status = $1 AND updated_at < $2
ORDER BY updated_at ASC
LIMIT $3;
`
	rows, err := r.sql.Query(ctx, query, domain.StatusPending, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list stale jobs: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(&job.ID, &job.UserID, &job.Prompt, &job.Status, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan stale job: %v", domain.ErrStoreUnavailable, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate stale jobs: %v", domain.ErrStoreUnavailable, err)
	}
	return jobs, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
