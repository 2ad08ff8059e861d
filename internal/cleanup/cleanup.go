// FilePath: internal/cleanup/cleanup.go
package cleanup

import (
	"context"
	"fmt"
	"strconv"

	"github.com/greenstem/planthub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// CleanupService coordinates deletion of hierarchical data
type CleanupService struct {
	devices      repository.DeviceRepository
	schedules    repository.ScheduleRepository
	measurements repository.MeasurementRepository
	events       *nuts.EventEmitter
}

// New creates a new CleanupService
func New(
	devices repository.DeviceRepository,
	schedules repository.ScheduleRepository,
	measurements repository.MeasurementRepository,
) *CleanupService {
	return &CleanupService{
		devices:      devices,
		schedules:    schedules,
		measurements: measurements,
		events:       nuts.NewEventEmitter(),
	}
}

// DeleteDevice deletes a device together with its schedules and
// measurements. Schedules and the device row share one transaction on
// the app store; measurements live on the measurement store and are
// deleted before commit, so a crash in between can leave the device
// gone with measurements already removed — never the other way around.
func (s *CleanupService) DeleteDevice(ctx context.Context, deviceID int64) error {
	tx, err := s.devices.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := s.schedules.DeleteByDevice(ctx, deviceID, tx); err != nil {
		return fmt.Errorf("failed to delete schedules: %w", err)
	}

	if err := s.measurements.DeleteByDevice(ctx, deviceID); err != nil {
		return fmt.Errorf("failed to delete measurements: %w", err)
	}
	s.events.Emit("measurements.deleted", strconv.FormatInt(deviceID, 10))

	if err := s.devices.DeleteWithChildren(ctx, deviceID, tx); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Emit event after successful deletion
	s.events.Emit("device.deleted", strconv.FormatInt(deviceID, 10))
	return nil
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, "cleanup_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}
