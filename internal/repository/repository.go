// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/greenstem/planthub/internal/database"
	"github.com/greenstem/planthub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// DeviceRepository defines the interface for device data operations
type DeviceRepository interface {
	database.Repository
	Create(ctx context.Context, device *models.Device) error
	Get(ctx context.Context, id int64) (*models.Device, error)
	Update(ctx context.Context, device *models.Device) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int) ([]*models.Device, error)
	ListByOwner(ctx context.Context, userID int64) ([]*models.Device, error)
	ListOwnerIDs(ctx context.Context) ([]int64, error)
	DeleteWithChildren(ctx context.Context, id int64, tx database.Transaction) error
}

// ScheduleRepository defines the interface for schedule data operations
type ScheduleRepository interface {
	database.Repository
	Create(ctx context.Context, schedule *models.Schedule) error
	Get(ctx context.Context, id int64) (*models.Schedule, error)
	Delete(ctx context.Context, id int64) error
	ListByDevice(ctx context.Context, deviceID int64) ([]*models.Schedule, error)
	DeleteByDevice(ctx context.Context, deviceID int64, tx database.Transaction) error
}

// MeasurementRepository defines the interface for telemetry measurements
type MeasurementRepository interface {
	database.Repository
	Insert(ctx context.Context, deviceID int64, key, value string, timestamp time.Time) error
	ListByDevice(ctx context.Context, deviceID int64, start, end time.Time) ([]models.Measurement, error)
	LatestByDevice(ctx context.Context, deviceID int64) ([]models.Measurement, error)
	DeleteByDevice(ctx context.Context, deviceID int64) error
	DeleteOldData(ctx context.Context, before time.Time) error
}
