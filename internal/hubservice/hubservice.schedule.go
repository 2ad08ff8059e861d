// FilePath: internal/hubservice/hubservice.schedule.go
package hubservice

import (
	"context"
	"time"

	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// CreateSchedule creates a new schedule after validating the clock
// window, frequency, bitmask range and the owning device's capability.
func (s *HubService) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	if _, err := models.ParseClock(schedule.Starts); err != nil {
		return errors.NewValidationError("invalid start time", err)
	}
	if _, err := models.ParseClock(schedule.Ends); err != nil {
		return errors.NewValidationError("invalid end time", err)
	}
	if !schedule.Frequency.Valid() {
		return errors.NewValidationError("unknown frequency: "+string(schedule.Frequency), nil)
	}
	if schedule.Bitmask < 0 || schedule.Bitmask > 0x7f {
		return errors.NewValidationError("bitmask out of range", nil)
	}

	device, err := s.Devices.Get(ctx, schedule.DeviceID)
	if err != nil {
		return err
	}
	if !device.Type.Actuatable() {
		return errors.NewValidationError("device type "+string(device.Type)+" cannot own schedules", nil)
	}

	schedule.CreatedAt = time.Now()

	nuts.L.Infof("[ScheduleService] Creating schedule for device %d (%s-%s, days %s)",
		schedule.DeviceID, schedule.Starts, schedule.Ends, models.FormatBitmask(schedule.Bitmask))
	return s.Schedules.Create(ctx, schedule)
}

// DeleteSchedule removes a single schedule.
func (s *HubService) DeleteSchedule(ctx context.Context, id int64) error {
	nuts.L.Infof("[ScheduleService] Deleting schedule %d", id)
	return s.Schedules.Delete(ctx, id)
}

// ListSchedulesByDevice returns a device's schedules in definition
// order.
func (s *HubService) ListSchedulesByDevice(ctx context.Context, deviceID int64) ([]*models.Schedule, error) {
	if _, err := s.Devices.Get(ctx, deviceID); err != nil {
		return nil, err
	}
	return s.Schedules.ListByDevice(ctx, deviceID)
}
