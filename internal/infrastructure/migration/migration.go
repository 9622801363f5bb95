package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")

	migrations := []Migration{
		{
			Name: "create_submission_attempts",
			Up: func(ctx context.Context, pool *pgxpool.Pool) error {
				return createSubmissionAttempts(ctx, pool)
			},
		},
		{
			Name: "add_http_status_to_submission_attempts",
			Up: func(ctx context.Context, pool *pgxpool.Pool) error {
				return addHTTPStatusColumn(ctx, pool)
			},
		},
	}

	for _, m := range migrations {
		if err := m.Up(ctx, pool); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

func createSubmissionAttempts(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS submission_attempts (
			id UUID PRIMARY KEY,
			job_id TEXT NOT NULL,
			domain TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			http_status INT,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	if _, err := pool.Exec(ctx, query); err != nil {
		slog.Warn("Error creating submission_attempts table (may already exist)", "error", err)
		return nil
	}

	slog.Info("Successfully ensured submission_attempts table")
	return nil
}

// addHTTPStatusColumn adds the http_status INT column if it doesn't exist
func addHTTPStatusColumn(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		ALTER TABLE submission_attempts
		ADD COLUMN IF NOT EXISTS http_status INT;
	`

	if _, err := pool.Exec(ctx, query); err != nil {
		// Log the error but don't fail - the column may already exist
		slog.Warn("Error adding http_status column (may already exist)", "error", err)
		return nil
	}

	slog.Info("Successfully added http_status column to submission_attempts table")
	return nil
}
