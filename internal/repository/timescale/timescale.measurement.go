// FilePath: internal/repository/timescale/timescale.measurement.go
package timescale

import (
	"context"
	"time"

	"github.com/greenstem/planthub/internal/database"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type MeasurementRepo struct {
	db database.DB
}

func NewMeasurementRepository(db database.DB) (*MeasurementRepo, error) {
	repo := &MeasurementRepo{db: db}
	err := repo.initializeSchema()
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MeasurementRepo) initializeSchema() error {
	// Create hypertable for measurements; value stays TEXT so plugs and
	// probes can share the table.
	queries := []string{
		`CREATE TABLE IF NOT EXISTS measurements (
			id TEXT PRIMARY KEY,
			device_id BIGINT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
		`SELECT create_hypertable('measurements', 'timestamp',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_device_timestamp
         ON measurements(device_id, timestamp DESC)`,
	}

	for _, query := range queries {
		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}

	return nil
}

func (r *MeasurementRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to begin transaction", err)
	}
	return tx, nil
}

func (r *MeasurementRepo) Insert(ctx context.Context, deviceID int64, key, value string, timestamp time.Time) error {
	id := nuts.NID("mp", 12)
	query := `
		INSERT INTO measurements (id, device_id, key, value, timestamp)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.GetDB().ExecContext(ctx, query, id, deviceID, key, value, timestamp)
	if err != nil {
		return errors.NewDatabaseError("failed to insert measurement", err)
	}
	return nil
}

func (r *MeasurementRepo) ListByDevice(ctx context.Context, deviceID int64, start, end time.Time) ([]models.Measurement, error) {
	measurements := []models.Measurement{}
	query := `
		SELECT id, device_id, key, value, timestamp
		FROM measurements
		WHERE device_id = $1 AND timestamp BETWEEN $2 AND $3
		ORDER BY timestamp DESC`

	err := r.db.GetDB().SelectContext(ctx, &measurements, query, deviceID, start, end)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get measurements", err)
	}
	return measurements, nil
}

func (r *MeasurementRepo) LatestByDevice(ctx context.Context, deviceID int64) ([]models.Measurement, error) {
	measurements := []models.Measurement{}
	query := `
		SELECT DISTINCT ON (key) id, device_id, key, value, timestamp
		FROM measurements
		WHERE device_id = $1
		ORDER BY key, timestamp DESC`

	err := r.db.GetDB().SelectContext(ctx, &measurements, query, deviceID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get latest measurements", err)
	}
	return measurements, nil
}

func (r *MeasurementRepo) DeleteByDevice(ctx context.Context, deviceID int64) error {
	query := `DELETE FROM measurements WHERE device_id = $1`

	_, err := r.db.GetDB().ExecContext(ctx, query, deviceID)
	if err != nil {
		return errors.NewDatabaseError("failed to delete measurements", err)
	}
	return nil
}

func (r *MeasurementRepo) DeleteOldData(ctx context.Context, before time.Time) error {
	query := `DELETE FROM measurements WHERE timestamp < $1`

	_, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return errors.NewDatabaseError("failed to delete old measurements", err)
	}
	return nil
}
