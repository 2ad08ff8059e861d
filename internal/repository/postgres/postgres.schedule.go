// FilePath: internal/repository/postgres/postgres.schedule.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/greenstem/planthub/internal/database"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
)

type ScheduleRepo struct {
	PostgresBaseRepo
}

func NewScheduleRepository(db database.DB) *ScheduleRepo {
	repo := &PostgresBaseRepo{db: db}
	return &ScheduleRepo{PostgresBaseRepo: *repo}
}

func (r *ScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	query := `
		INSERT INTO schedules (device_id, starts, ends, frequency, bitmask, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.GetDB().QueryRowxContext(ctx, query,
		schedule.DeviceID, schedule.Starts, schedule.Ends,
		schedule.Frequency, schedule.Bitmask, schedule.CreatedAt,
	).Scan(&schedule.ID)
	if err != nil {
		return errors.NewDatabaseError("failed to create schedule", err)
	}
	return nil
}

func (r *ScheduleRepo) Get(ctx context.Context, id int64) (*models.Schedule, error) {
	schedule := &models.Schedule{}
	query := `SELECT * FROM schedules WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, schedule, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("schedule not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get schedule", err)
	}
	return schedule, nil
}

func (r *ScheduleRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM schedules WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete schedule", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("schedule not found", nil)
	}

	return nil
}

func (r *ScheduleRepo) ListByDevice(ctx context.Context, deviceID int64) ([]*models.Schedule, error) {
	schedules := []*models.Schedule{}
	query := `SELECT * FROM schedules WHERE device_id = $1 ORDER BY id`

	err := r.db.GetDB().SelectContext(ctx, &schedules, query, deviceID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list schedules", err)
	}

	return schedules, nil
}

func (r *ScheduleRepo) DeleteByDevice(ctx context.Context, deviceID int64, tx database.Transaction) error {
	query := `DELETE FROM schedules WHERE device_id = $1`

	if _, err := tx.ExecContext(ctx, query, deviceID); err != nil {
		return errors.NewDatabaseError("failed to delete schedules for device", err)
	}
	return nil
}
