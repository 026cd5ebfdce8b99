package migration

import (
	"context"

	"solarprep/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDatasetRunsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create dataset_runs table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createDatasetRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dataset_runs (
			id UUID PRIMARY KEY,
			status VARCHAR(20) NOT NULL DEFAULT 'processing',
			fingerprint VARCHAR(64) NOT NULL,
			target VARCHAR(255) NOT NULL,
			horizons VARCHAR(255) NOT NULL,
			test_period_days INTEGER NOT NULL,
			reading_rows INTEGER NOT NULL DEFAULT 0,
			repaired_slots INTEGER NOT NULL DEFAULT 0,
			train_rows INTEGER NOT NULL DEFAULT 0,
			test_rows INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			summary JSONB NOT NULL,
			started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			finished_at TIMESTAMP WITH TIME ZONE
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_started_at ON dataset_runs(started_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_runs_fingerprint_status ON dataset_runs(fingerprint, status)",
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
