// FilePath: internal/repository/postgres/postgres.device_test.go
package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/greenstem/planthub/internal/database"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *DeviceRepo) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return mock, NewDeviceRepository(database.Wrap(db))
}

func deviceColumns() []string {
	return []string{"id", "name", "type", "user_id", "description", "ip_address", "serial_number", "pin", "created_at", "updated_at"}
}

func TestDeviceCreate(t *testing.T) {
	mock, repo := setupMockDB(t)

	now := time.Now()
	device := &models.Device{
		Name:      "grow light",
		Type:      models.DeviceTypeSmartPlug,
		UserID:    1,
		IPAddress: "10.0.0.5",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectQuery(`INSERT INTO devices`).
		WithArgs(device.Name, device.Type, device.UserID, device.Description,
			device.IPAddress, device.SerialNumber, device.Pin,
			device.CreatedAt, device.UpdatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	require.NoError(t, repo.Create(context.Background(), device))
	assert.Equal(t, int64(7), device.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceGet(t *testing.T) {
	mock, repo := setupMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows(deviceColumns()).
		AddRow(7, "grow light", "smart_plug", 1, "", "10.0.0.5", "", 0, now, now)

	mock.ExpectQuery(`SELECT \* FROM devices WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	device, err := repo.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "grow light", device.Name)
	assert.Equal(t, models.DeviceTypeSmartPlug, device.Type)
	assert.Equal(t, "10.0.0.5", device.IPAddress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceGetNotFound(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM devices WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(deviceColumns()))

	_, err := repo.Get(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceDeleteNotFound(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectExec(`DELETE FROM devices WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceListByOwner(t *testing.T) {
	mock, repo := setupMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows(deviceColumns()).
		AddRow(1, "plug", "smart_plug", 3, "", "10.0.0.1", "", 0, now, now).
		AddRow(2, "probe", "temperature_probe", 3, "", "", "28-aa", 4, now, now)

	mock.ExpectQuery(`SELECT \* FROM devices WHERE user_id = \$1 ORDER BY id`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	devices, err := repo.ListByOwner(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, int64(1), devices[0].ID)
	assert.Equal(t, models.DeviceTypeTemperatureProbe, devices[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceListOwnerIDs(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT DISTINCT user_id FROM devices ORDER BY user_id`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1).AddRow(3))

	owners, err := repo.ListOwnerIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, owners)
	assert.NoError(t, mock.ExpectationsWereMet())
}
