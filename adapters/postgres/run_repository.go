package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"solarprep/domain/core"
	"solarprep/domain/dataset"
	"solarprep/internal/errors"
	"solarprep/ports"

	"github.com/jmoiron/sqlx"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// runRecord is the row layout of dataset_runs. The full summary is kept as
// JSONB; the scalar columns exist for filtering and ordering.
type runRecord struct {
	ID             string       `db:"id"`
	Status         string       `db:"status"`
	Fingerprint    string       `db:"fingerprint"`
	Target         string       `db:"target"`
	Horizons       string       `db:"horizons"`
	TestPeriodDays int          `db:"test_period_days"`
	ReadingRows    int          `db:"reading_rows"`
	RepairedSlots  int          `db:"repaired_slots"`
	TrainRows      int          `db:"train_rows"`
	TestRows       int          `db:"test_rows"`
	ErrorMessage   string       `db:"error_message"`
	Summary        []byte       `db:"summary"`
	StartedAt      sql.NullTime `db:"started_at"`
	FinishedAt     sql.NullTime `db:"finished_at"`
}

func toRecord(run *dataset.RunSummary) (*runRecord, error) {
	summaryJSON, err := json.Marshal(run)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	horizons := make([]string, len(run.Params.Horizons))
	for i, d := range run.Params.Horizons {
		horizons[i] = fmt.Sprintf("%d", d)
	}
	return &runRecord{
		ID:             run.RunID.String(),
		Status:         string(run.Status),
		Fingerprint:    run.Fingerprint.String(),
		Target:         run.Params.Target,
		Horizons:       strings.Join(horizons, ","),
		TestPeriodDays: run.Params.TestPeriodDays,
		ReadingRows:    run.ReadingRows,
		RepairedSlots:  run.RepairedSlots,
		TrainRows:      run.Split.TrainRows,
		TestRows:       run.Split.TestRows,
		ErrorMessage:   run.ErrorMessage,
		Summary:        summaryJSON,
		StartedAt:      sql.NullTime{Time: run.StartedAt, Valid: !run.StartedAt.IsZero()},
		FinishedAt:     sql.NullTime{Time: run.FinishedAt, Valid: !run.FinishedAt.IsZero()},
	}, nil
}

func fromSummary(data []byte) (*dataset.RunSummary, error) {
	var run dataset.RunSummary
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &run, nil
}

// Create inserts a new run
func (r *runRepository) Create(ctx context.Context, run *dataset.RunSummary) error {
	rec, err := toRecord(run)
	if err != nil {
		return err
	}

	query := `INSERT INTO dataset_runs (
		id, status, fingerprint, target, horizons, test_period_days,
		reading_rows, repaired_slots, train_rows, test_rows,
		error_message, summary, started_at, finished_at
	) VALUES (
		:id, :status, :fingerprint, :target, :horizons, :test_period_days,
		:reading_rows, :repaired_slots, :train_rows, :test_rows,
		:error_message, :summary, :started_at, :finished_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return errors.DatabaseError("failed to create run", err)
	}
	return nil
}

// Update stores the current state of a run
func (r *runRepository) Update(ctx context.Context, run *dataset.RunSummary) error {
	rec, err := toRecord(run)
	if err != nil {
		return err
	}

	query := `UPDATE dataset_runs SET
		status = :status, reading_rows = :reading_rows, repaired_slots = :repaired_slots,
		train_rows = :train_rows, test_rows = :test_rows, error_message = :error_message,
		summary = :summary, finished_at = :finished_at
	WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return errors.DatabaseError("failed to update run", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("failed to check update result", err)
	}
	if rows == 0 {
		return errors.NotFound("run " + run.RunID.String())
	}
	return nil
}

// GetByID retrieves a run by its ID
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*dataset.RunSummary, error) {
	var summary []byte
	err := r.db.GetContext(ctx, &summary, `SELECT summary FROM dataset_runs WHERE id = $1`, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("run " + id.String())
		}
		return nil, errors.DatabaseError("failed to get run", err)
	}
	return fromSummary(summary)
}

// ListRecent returns the newest runs first
func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]*dataset.RunSummary, error) {
	var summaries [][]byte
	err := r.db.SelectContext(ctx, &summaries,
		`SELECT summary FROM dataset_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	runs := make([]*dataset.RunSummary, 0, len(summaries))
	for _, s := range summaries {
		run, err := fromSummary(s)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// FindLatestReady returns the newest ready run with the fingerprint, or nil
func (r *runRepository) FindLatestReady(ctx context.Context, fingerprint core.ConfigHash) (*dataset.RunSummary, error) {
	var summary []byte
	err := r.db.GetContext(ctx, &summary, `SELECT summary FROM dataset_runs
		WHERE fingerprint = $1 AND status = $2
		ORDER BY finished_at DESC LIMIT 1`, fingerprint.String(), string(dataset.StatusReady))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.DatabaseError("failed to find run", err)
	}
	return fromSummary(summary)
}
