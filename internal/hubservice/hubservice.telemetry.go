// FilePath: internal/hubservice/hubservice.telemetry.go
package hubservice

import (
	"context"
	"fmt"
	"time"

	"github.com/greenstem/planthub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// IngestTelemetry persists one telemetry payload as individual
// measurements. Rows are stamped with the ingestion-time clock, not the
// sensor-read time. Each key is written independently; a failed key is
// logged and skipped, so a mid-loop store failure leaves a partial set
// rather than rolling back the whole push. Returns the number of keys
// persisted.
func (s *HubService) IngestTelemetry(ctx context.Context, deviceID int64, payload map[string]any) (int, error) {
	device, err := s.Devices.Get(ctx, deviceID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	stored := 0
	for key, raw := range payload {
		value := fmt.Sprint(raw)
		if err := s.Measurements.Insert(ctx, device.ID, key, value, now); err != nil {
			nuts.L.Warnf("[TelemetryService] Failed to store %s for device %d: %v", key, device.ID, err)
			continue
		}
		stored++

		if s.Cache != nil {
			s.Cache.Set(ctx, device.ID, key, value)
		}
	}

	nuts.L.Debugf("[TelemetryService] Stored %d/%d reading(s) for device %d", stored, len(payload), deviceID)
	return stored, nil
}

// GetMeasurements returns a device's stored measurements within a time
// range.
func (s *HubService) GetMeasurements(ctx context.Context, deviceID int64, start, end time.Time) ([]models.Measurement, error) {
	if _, err := s.Devices.Get(ctx, deviceID); err != nil {
		return nil, err
	}
	return s.Measurements.ListByDevice(ctx, deviceID, start, end)
}
