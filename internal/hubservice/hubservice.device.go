// FilePath: internal/hubservice/hubservice.device.go
package hubservice

import (
	"context"
	"time"

	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceStatus bundles the stored device row with its most recent
// telemetry readings.
type DeviceStatus struct {
	Device       *models.Device    `json:"device"`
	LastReadings map[string]string `json:"last_readings"`
}

// CreateDevice creates a new device after validating the type tag and
// its type-specific fields.
func (s *HubService) CreateDevice(ctx context.Context, device *models.Device) error {
	if device.Name == "" {
		return errors.NewValidationError("device name is required", nil)
	}
	if !device.Type.Valid() {
		return errors.NewValidationError("unknown device type: "+string(device.Type), nil)
	}
	if device.UserID == 0 {
		return errors.NewValidationError("device owner is required", nil)
	}
	if err := validateTypeFields(device); err != nil {
		return err
	}

	now := time.Now()
	device.CreatedAt = now
	device.UpdatedAt = now

	nuts.L.Infof("[DeviceService] Creating new device: %s (%s)", device.Name, device.Type)
	return s.Devices.Create(ctx, device)
}

// GetDevice retrieves a device by id.
func (s *HubService) GetDevice(ctx context.Context, id int64) (*models.Device, error) {
	return s.Devices.Get(ctx, id)
}

// ListDevices retrieves all devices belonging to an owner.
func (s *HubService) ListDevices(ctx context.Context, userID int64) ([]*models.Device, error) {
	return s.Devices.ListByOwner(ctx, userID)
}

// UpdateDevice applies a partial update. Empty fields keep their stored
// values; type changes re-validate the type-specific fields.
func (s *HubService) UpdateDevice(ctx context.Context, update *models.Device) (*models.Device, error) {
	existing, err := s.Devices.Get(ctx, update.ID)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		existing.Name = update.Name
	}
	if update.Description != "" {
		existing.Description = update.Description
	}
	if update.Type != "" && update.Type != existing.Type {
		if !update.Type.Valid() {
			return nil, errors.NewValidationError("unknown device type: "+string(update.Type), nil)
		}
		existing.Type = update.Type
		// The old type's connection fields would fail validation under
		// the new tag; the update must supply the new type's fields.
		existing.IPAddress = ""
		existing.SerialNumber = ""
		existing.Pin = 0
	}
	if update.IPAddress != "" {
		existing.IPAddress = update.IPAddress
	}
	if update.SerialNumber != "" {
		existing.SerialNumber = update.SerialNumber
	}
	if update.Pin != 0 {
		existing.Pin = update.Pin
	}

	if err := validateTypeFields(existing); err != nil {
		return nil, err
	}

	existing.UpdatedAt = time.Now()

	nuts.L.Infof("[DeviceService] Updating device %d", existing.ID)
	if err := s.Devices.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteDevice handles device deletion with cascading cleanup of
// schedules and measurements.
func (s *HubService) DeleteDevice(ctx context.Context, id int64) error {
	if _, err := s.Devices.Get(ctx, id); err != nil {
		return err
	}

	nuts.L.Infof("[DeviceService] Deleting device %d", id)
	if err := s.Cleanup.DeleteDevice(ctx, id); err != nil {
		return errors.NewDatabaseError("failed to delete device", err)
	}

	if s.Cache != nil {
		s.Cache.Invalidate(ctx, id)
	}
	return nil
}

// GetDeviceStatus retrieves the device row plus its latest readings,
// preferring the cache and falling back to the measurement store.
func (s *HubService) GetDeviceStatus(ctx context.Context, id int64) (*DeviceStatus, error) {
	device, err := s.Devices.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	readings := map[string]string{}
	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, id)
		if err == nil && len(cached) > 0 {
			readings = cached
		}
	}
	if len(readings) == 0 {
		latest, err := s.Measurements.LatestByDevice(ctx, id)
		if err != nil {
			nuts.L.Warnf("[DeviceService] Failed to get latest readings for device %d: %v", id, err)
		}
		for _, m := range latest {
			readings[m.Key] = m.Value
		}
	}

	return &DeviceStatus{
		Device:       device,
		LastReadings: readings,
	}, nil
}

// validateTypeFields enforces that type-specific fields are present only
// for the matching type tag.
func validateTypeFields(device *models.Device) error {
	switch device.Type {
	case models.DeviceTypeSmartPlug:
		if device.IPAddress == "" {
			return errors.NewValidationError("ip_address is required for smart_plug devices", nil)
		}
		if device.SerialNumber != "" || device.Pin != 0 {
			return errors.NewValidationError("serial_number and pin are not valid for smart_plug devices", nil)
		}
	case models.DeviceTypeTemperatureProbe:
		if device.SerialNumber == "" {
			return errors.NewValidationError("serial_number is required for temperature_probe devices", nil)
		}
		if device.IPAddress != "" {
			return errors.NewValidationError("ip_address is not valid for temperature_probe devices", nil)
		}
	default:
		if device.IPAddress != "" || device.SerialNumber != "" || device.Pin != 0 {
			return errors.NewValidationError("type-specific fields are not valid for generic devices", nil)
		}
	}
	return nil
}
