// FilePath: internal/hubservice/hubservice.go
package hubservice

import (
	"context"

	"github.com/greenstem/planthub/internal/cleanup"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/repository"
)

// ReadingCache is the slice of the latest-reading cache the service
// needs; satisfied by rediscache.LatestReadingCache. May be nil, in
// which case status lookups fall back to the measurement store.
type ReadingCache interface {
	Set(ctx context.Context, deviceID int64, key, value string)
	Get(ctx context.Context, deviceID int64) (map[string]string, error)
	Invalidate(ctx context.Context, deviceID int64)
}

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Devices      repository.DeviceRepository
	Schedules    repository.ScheduleRepository
	Measurements repository.MeasurementRepository
	Cache        ReadingCache
	Cleanup      *cleanup.CleanupService
}

// New creates a new HubService instance
func New(
	devices repository.DeviceRepository,
	schedules repository.ScheduleRepository,
	measurements repository.MeasurementRepository,
	cache ReadingCache,
) *HubService {
	svc := &HubService{
		Devices:      devices,
		Schedules:    schedules,
		Measurements: measurements,
		Cache:        cache,
	}
	svc.Cleanup = cleanup.New(devices, schedules, measurements)
	return svc
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Devices == nil {
		return ErrMissingRepository("devices")
	}
	if s.Schedules == nil {
		return ErrMissingRepository("schedules")
	}
	if s.Measurements == nil {
		return ErrMissingRepository("measurements")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
