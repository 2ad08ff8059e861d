// FilePath: internal/repository/postgres/postgres.device.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/greenstem/planthub/internal/database"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
)

type DeviceRepo struct {
	PostgresBaseRepo
}

func NewDeviceRepository(db database.DB) *DeviceRepo {
	repo := &PostgresBaseRepo{db: db}
	return &DeviceRepo{PostgresBaseRepo: *repo}
}

func (r *DeviceRepo) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (
			name, type, user_id, description,
			ip_address, serial_number, pin,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.GetDB().QueryRowxContext(ctx, query,
		device.Name, device.Type, device.UserID, device.Description,
		device.IPAddress, device.SerialNumber, device.Pin,
		device.CreatedAt, device.UpdatedAt,
	).Scan(&device.ID)
	if err != nil {
		return errors.NewDatabaseError("failed to create device", err)
	}
	return nil
}

func (r *DeviceRepo) Get(ctx context.Context, id int64) (*models.Device, error) {
	device := &models.Device{}
	query := `SELECT * FROM devices WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, device, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("device not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get device", err)
	}
	return device, nil
}

func (r *DeviceRepo) Update(ctx context.Context, device *models.Device) error {
	query := `
		UPDATE devices SET
			name = :name,
			type = :type,
			description = :description,
			ip_address = :ip_address,
			serial_number = :serial_number,
			pin = :pin,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, device)
	if err != nil {
		return errors.NewDatabaseError("failed to update device", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("device not found", nil)
	}

	return nil
}

func (r *DeviceRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM devices WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete device", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("device not found", nil)
	}

	return nil
}

func (r *DeviceRepo) DeleteWithChildren(ctx context.Context, id int64, tx database.Transaction) error {
	query := `DELETE FROM devices WHERE id = $1`

	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete device", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("device not found", nil)
	}

	return nil
}

func (r *DeviceRepo) List(ctx context.Context, offset, limit int) ([]*models.Device, error) {
	devices := []*models.Device{}
	query := `SELECT * FROM devices ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	err := r.db.GetDB().SelectContext(ctx, &devices, query, offset, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list devices", err)
	}

	return devices, nil
}

func (r *DeviceRepo) ListByOwner(ctx context.Context, userID int64) ([]*models.Device, error) {
	devices := []*models.Device{}
	query := `SELECT * FROM devices WHERE user_id = $1 ORDER BY id`

	err := r.db.GetDB().SelectContext(ctx, &devices, query, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list devices by owner", err)
	}

	return devices, nil
}

func (r *DeviceRepo) ListOwnerIDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	query := `SELECT DISTINCT user_id FROM devices ORDER BY user_id`

	err := r.db.GetDB().SelectContext(ctx, &ids, query)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list device owners", err)
	}

	return ids, nil
}
