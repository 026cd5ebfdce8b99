package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"solarprep/domain/core"
	"solarprep/domain/dataset"
	apperrors "solarprep/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRunMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func sampleRun() *dataset.RunSummary {
	run := dataset.NewRunSummary(dataset.BuildParams{Target: "Total Yield(kWh)", Horizons: []int{1, 7}, TestPeriodDays: 3})
	run.StartedAt = time.Date(2021, 6, 1, 9, 0, 0, 0, time.UTC)
	run.ReadingRows = 1200
	run.RepairedSlots = 4
	run.Split = dataset.SplitStats{TrainRows: 800, TestRows: 200}
	return run
}

func TestRunRepository_Create(t *testing.T) {
	db, mock := setupRunMock(t)
	repo := NewRunRepository(db)
	run := sampleRun()

	mock.ExpectExec("INSERT INTO dataset_runs").
		WithArgs(run.RunID.String(), "processing", run.Fingerprint.String(), "Total Yield(kWh)", "1,7", 3,
			1200, 4, 800, 200, "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepository_Create_DatabaseError(t *testing.T) {
	db, mock := setupRunMock(t)
	repo := NewRunRepository(db)

	mock.ExpectExec("INSERT INTO dataset_runs").WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), sampleRun())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}

func TestRunRepository_Update_NotFound(t *testing.T) {
	db, mock := setupRunMock(t)
	repo := NewRunRepository(db)
	run := sampleRun()
	run.Complete()

	mock.ExpectExec("UPDATE dataset_runs SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), run)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestRunRepository_GetByID(t *testing.T) {
	db, mock := setupRunMock(t)
	repo := NewRunRepository(db)
	run := sampleRun()
	run.Complete()
	summary, err := json.Marshal(run)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT summary FROM dataset_runs WHERE id").
		WithArgs(run.RunID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"summary"}).AddRow(summary))

	got, err := repo.GetByID(context.Background(), run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, dataset.StatusReady, got.Status)
	assert.Equal(t, []int{1, 7}, got.Params.Horizons)
	assert.Equal(t, 200, got.Split.TestRows)
}

func TestRunRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupRunMock(t)
	repo := NewRunRepository(db)

	mock.ExpectQuery("SELECT summary FROM dataset_runs WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"summary"}))

	_, err := repo.GetByID(context.Background(), core.RunID("missing"))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestRunRepository_ListRecent(t *testing.T) {
	db, mock := setupRunMock(t)
	repo := NewRunRepository(db)
	a, b := sampleRun(), sampleRun()
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)

	mock.ExpectQuery("SELECT summary FROM dataset_runs ORDER BY started_at DESC").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"summary"}).AddRow(jb).AddRow(ja))

	runs, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, b.RunID, runs[0].RunID)
}

func TestRunRepository_FindLatestReady_None(t *testing.T) {
	db, mock := setupRunMock(t)
	repo := NewRunRepository(db)

	mock.ExpectQuery("SELECT summary FROM dataset_runs").
		WithArgs("abc", "ready").
		WillReturnRows(sqlmock.NewRows([]string{"summary"}))

	run, err := repo.FindLatestReady(context.Background(), core.ConfigHash("abc"))
	require.NoError(t, err)
	assert.Nil(t, run)
}
