// FilePath: internal/repository/timescale/timescale.measurement_test.go
package timescale

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/greenstem/planthub/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMeasurementRepo(t *testing.T) (sqlmock.Sqlmock, *MeasurementRepo) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	// Constructor bootstraps the hypertable schema
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS measurements`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SELECT create_hypertable`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_measurements_device_timestamp`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo, err := NewMeasurementRepository(database.Wrap(sqlx.NewDb(mockDB, "sqlmock")))
	require.NoError(t, err)
	return mock, repo
}

func TestMeasurementInsert(t *testing.T) {
	mock, repo := setupMeasurementRepo(t)

	now := time.Now()
	mock.ExpectExec(`INSERT INTO measurements`).
		WithArgs(sqlmock.AnyArg(), int64(42), "temperature", "72.725", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), 42, "temperature", "72.725", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeasurementLatestByDevice(t *testing.T) {
	mock, repo := setupMeasurementRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "device_id", "key", "value", "timestamp"}).
		AddRow("mp_abc", 42, "relay_state", "1", now).
		AddRow("mp_def", 42, "temperature", "72.725", now)

	mock.ExpectQuery(`SELECT DISTINCT ON \(key\)`).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	latest, err := repo.LatestByDevice(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "relay_state", latest[0].Key)
	assert.Equal(t, "72.725", latest[1].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeasurementListByDevice(t *testing.T) {
	mock, repo := setupMeasurementRepo(t)

	start := time.Now().Add(-time.Hour)
	end := time.Now()
	rows := sqlmock.NewRows([]string{"id", "device_id", "key", "value", "timestamp"}).
		AddRow("mp_abc", 42, "temperature", "71.2", end)

	mock.ExpectQuery(`SELECT id, device_id, key, value, timestamp`).
		WithArgs(int64(42), start, end).
		WillReturnRows(rows)

	measurements, err := repo.ListByDevice(context.Background(), 42, start, end)
	require.NoError(t, err)
	require.Len(t, measurements, 1)
	assert.Equal(t, int64(42), measurements[0].DeviceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeasurementDeleteByDevice(t *testing.T) {
	mock, repo := setupMeasurementRepo(t)

	mock.ExpectExec(`DELETE FROM measurements WHERE device_id = \$1`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteByDevice(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}
