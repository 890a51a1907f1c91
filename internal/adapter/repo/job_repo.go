package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contentgen/internal/domain"
)

// JobRepositoryPG implements domain.JobStore on PostgreSQL. The full job
// record travels as one JSONB document; status and progress are mirrored into
// columns for querying. Update holds a row lock for the duration of the
// mutator, which honors the atomic read-modify-write contract across
// processes, not just goroutines.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a job store backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// EnsureSchema creates the jobs table when it does not exist yet.
func (r *JobRepositoryPG) EnsureSchema(ctx context.Context) error {
	query := `
CREATE TABLE IF NOT EXISTS jobs (
    id         TEXT PRIMARY KEY,
    status     TEXT NOT NULL,
    progress   INT NOT NULL DEFAULT 0,
    record     JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.pool.Exec(ctx, query)
	return err
}

// Create inserts a new queued job and returns its identifier.
func (r *JobRepositoryPG) Create(ctx context.Context, req domain.CampaignRequest) (string, error) {
	now := time.Now().UTC()
	job := domain.Job{
		ID:        uuid.NewString(),
		Status:    domain.JobStatusQueued,
		Request:   req,
		StageDone: make(map[domain.Channel]float64, len(req.Channels)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	record, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encode job: %w", err)
	}
	query := `
INSERT INTO jobs (id, status, progress, record, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5);
`
	if _, err := r.pool.Exec(ctx, query, job.ID, job.Status, job.Progress, record, now); err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}
	return job.ID, nil
}

// Get fetches a job by its identifier.
func (r *JobRepositoryPG) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `SELECT record FROM jobs WHERE id = $1;`
	var record []byte
	if err := r.pool.QueryRow(ctx, query, jobID).Scan(&record); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return decodeJob(record)
}

// Update applies the mutator under a row lock. Transitions that would lower
// progress or leave a terminal status are discarded, matching the in-memory
// store's behavior.
func (r *JobRepositoryPG) Update(ctx context.Context, jobID string, mutate func(*domain.Job)) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	var record []byte
	if err := tx.QueryRow(ctx, `SELECT record FROM jobs WHERE id = $1 FOR UPDATE;`, jobID).Scan(&record); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	job, err := decodeJob(record)
	if err != nil {
		return err
	}

	prevStatus := job.Status
	prevProgress := job.Progress
	mutate(job)
	if prevStatus.Terminal() && job.Status != prevStatus {
		job.Status = prevStatus
	}
	if job.Progress < prevProgress {
		job.Progress = prevProgress
	}
	job.UpdatedAt = time.Now().UTC()

	updated, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	query := `
UPDATE jobs
SET status = $2,
    progress = $3,
    record = $4,
    updated_at = $5
WHERE id = $1;
`
	if _, err := tx.Exec(ctx, query, jobID, job.Status, job.Progress, updated, job.UpdatedAt); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return tx.Commit(ctx)
}

func decodeJob(record []byte) (*domain.Job, error) {
	var job domain.Job
	if err := json.Unmarshal(record, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

var _ domain.JobStore = (*JobRepositoryPG)(nil)
