package repository

import (
	"context"
	"encoding/json"

	"cv-apply/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

type SubmissionsRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionsRepo(pool *pgxpool.Pool) *SubmissionsRepo {
	return &SubmissionsRepo{pool: pool}
}

// Save upserts one submission attempt. A nil pool is tolerated so the
// pipelines keep working when no database is configured.
func (r *SubmissionsRepo) Save(ctx context.Context, a *domain.SubmissionAttempt) error {
	if r.pool == nil {
		return nil
	}

	metaB, _ := json.Marshal(a.Metadata)

	_, err := r.pool.Exec(ctx, `INSERT INTO submission_attempts (id, job_id, domain, status, http_status, metadata, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET job_id = EXCLUDED.job_id, domain = EXCLUDED.domain, status = EXCLUDED.status, http_status = EXCLUDED.http_status, metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at`,
		a.ID, a.JobID, a.Domain, a.Status, a.HTTPStatus, metaB, a.CreatedAt, a.UpdatedAt)

	return err
}

// queryJSON runs a SQL that returns a single json value and unmarshals it.
func queryJSON(ctx context.Context, pool *pgxpool.Pool, sql string, args ...interface{}) (interface{}, error) {
	var raw []byte
	err := pool.QueryRow(ctx, sql, args...).Scan(&raw)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Recent returns the latest persisted attempts as generic JSON, newest
// first. With no pool configured it returns an empty list.
func (r *SubmissionsRepo) Recent(ctx context.Context, limit int) (interface{}, error) {
	if r.pool == nil {
		return []interface{}{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	out, err := queryJSON(ctx, r.pool, `SELECT COALESCE(json_agg(t), '[]'::json) FROM (
			SELECT id, job_id, domain, status, http_status, metadata, created_at
			FROM submission_attempts
			ORDER BY created_at DESC
			LIMIT $1
		) t`, limit)
	if err != nil {
		return nil, err
	}
	return out, nil
}
