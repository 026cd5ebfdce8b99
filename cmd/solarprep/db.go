package main

import (
	"context"

	"solarprep/adapters/postgres"
	"solarprep/internal"
	"solarprep/internal/config"
	"solarprep/internal/errors"
	"solarprep/internal/migration"
	"solarprep/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// openDatabase connects to PostgreSQL and applies the schema.
func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	if !cfg.Database.Enabled() {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// openRunRepository returns the run history store, or nil when no database is
// configured.
func openRunRepository(ctx context.Context, cfg *config.Config, logger *internal.Logger) (ports.RunRepository, func(), error) {
	if !cfg.Database.Enabled() {
		logger.Debug("DATABASE_URL not set, run history disabled")
		return nil, func() {}, nil
	}
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewRunRepository(db), func() { db.Close() }, nil
}
