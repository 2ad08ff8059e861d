// FilePath: internal/hubservice/hubservice_test.go
package hubservice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
	"github.com/greenstem/planthub/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeviceRepo struct {
	repository.DeviceRepository
	devices map[int64]*models.Device
}

func (f *fakeDeviceRepo) Get(ctx context.Context, id int64) (*models.Device, error) {
	device, ok := f.devices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *device
	return &copied, nil
}

func (f *fakeDeviceRepo) Update(ctx context.Context, device *models.Device) error {
	if _, ok := f.devices[device.ID]; !ok {
		return repository.ErrNotFound
	}
	f.devices[device.ID] = device
	return nil
}

type fakeScheduleRepo struct {
	repository.ScheduleRepository
	created []*models.Schedule
}

func (f *fakeScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	f.created = append(f.created, schedule)
	return nil
}

type insertedRow struct {
	deviceID int64
	key      string
	value    string
}

type fakeMeasurementRepo struct {
	repository.MeasurementRepository
	inserted []insertedRow
	failKey  string
	latest   []models.Measurement
}

func (f *fakeMeasurementRepo) Insert(ctx context.Context, deviceID int64, key, value string, timestamp time.Time) error {
	if f.failKey != "" && key == f.failKey {
		return fmt.Errorf("measurement store unavailable")
	}
	f.inserted = append(f.inserted, insertedRow{deviceID: deviceID, key: key, value: value})
	return nil
}

func (f *fakeMeasurementRepo) LatestByDevice(ctx context.Context, deviceID int64) ([]models.Measurement, error) {
	return f.latest, nil
}

type fakeCache struct {
	entries map[int64]map[string]string
}

func (c *fakeCache) Set(ctx context.Context, deviceID int64, key, value string) {
	if c.entries == nil {
		c.entries = make(map[int64]map[string]string)
	}
	if c.entries[deviceID] == nil {
		c.entries[deviceID] = make(map[string]string)
	}
	c.entries[deviceID][key] = value
}

func (c *fakeCache) Get(ctx context.Context, deviceID int64) (map[string]string, error) {
	return c.entries[deviceID], nil
}

func (c *fakeCache) Invalidate(ctx context.Context, deviceID int64) {
	delete(c.entries, deviceID)
}

func testService(devices *fakeDeviceRepo, schedules *fakeScheduleRepo, measurements *fakeMeasurementRepo, cache ReadingCache) *HubService {
	return New(devices, schedules, measurements, cache)
}

func TestIngestTelemetryFansOutPerKey(t *testing.T) {
	devices := &fakeDeviceRepo{devices: map[int64]*models.Device{
		42: {ID: 42, Name: "pond plug", Type: models.DeviceTypeSmartPlug, IPAddress: "10.0.0.42"},
	}}
	measurements := &fakeMeasurementRepo{}
	cache := &fakeCache{}
	svc := testService(devices, &fakeScheduleRepo{}, measurements, cache)

	stored, err := svc.IngestTelemetry(context.Background(), 42, map[string]any{
		"relay_state": 1,
		"power_mw":    4250,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	require.Len(t, measurements.inserted, 2)
	for _, row := range measurements.inserted {
		assert.Equal(t, int64(42), row.deviceID)
	}

	cached, err := cache.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "1", cached["relay_state"])
	assert.Equal(t, "4250", cached["power_mw"])
}

func TestIngestTelemetryUnknownDevice(t *testing.T) {
	svc := testService(&fakeDeviceRepo{devices: map[int64]*models.Device{}}, &fakeScheduleRepo{}, &fakeMeasurementRepo{}, nil)

	_, err := svc.IngestTelemetry(context.Background(), 99, map[string]any{"temperature": 71.2})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIngestTelemetryPartialFailure(t *testing.T) {
	devices := &fakeDeviceRepo{devices: map[int64]*models.Device{
		42: {ID: 42, Type: models.DeviceTypeSmartPlug},
	}}
	measurements := &fakeMeasurementRepo{failKey: "voltage_mv"}
	svc := testService(devices, &fakeScheduleRepo{}, measurements, nil)

	stored, err := svc.IngestTelemetry(context.Background(), 42, map[string]any{
		"relay_state": 1,
		"voltage_mv":  229810,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	require.Len(t, measurements.inserted, 1)
	assert.Equal(t, "relay_state", measurements.inserted[0].key)
}

func TestCreateScheduleValidation(t *testing.T) {
	devices := &fakeDeviceRepo{devices: map[int64]*models.Device{
		1: {ID: 1, Type: models.DeviceTypeSmartPlug, IPAddress: "10.0.0.1"},
		2: {ID: 2, Type: models.DeviceTypeTemperatureProbe, SerialNumber: "28-aa"},
	}}
	schedules := &fakeScheduleRepo{}
	svc := testService(devices, schedules, &fakeMeasurementRepo{}, nil)
	ctx := context.Background()

	valid := &models.Schedule{DeviceID: 1, Starts: "09:00", Ends: "17:00", Frequency: models.FrequencyWeekly, Bitmask: 0x3e}
	require.NoError(t, svc.CreateSchedule(ctx, valid))
	assert.Len(t, schedules.created, 1)

	badClock := &models.Schedule{DeviceID: 1, Starts: "9am", Ends: "17:00", Frequency: models.FrequencyWeekly}
	assert.True(t, errors.IsValidation(svc.CreateSchedule(ctx, badClock)))

	badFrequency := &models.Schedule{DeviceID: 1, Starts: "09:00", Ends: "17:00", Frequency: "hourly"}
	assert.True(t, errors.IsValidation(svc.CreateSchedule(ctx, badFrequency)))

	badBitmask := &models.Schedule{DeviceID: 1, Starts: "09:00", Ends: "17:00", Frequency: models.FrequencyWeekly, Bitmask: 0x80}
	assert.True(t, errors.IsValidation(svc.CreateSchedule(ctx, badBitmask)))

	// Probes are read-only and cannot own schedules
	probeSchedule := &models.Schedule{DeviceID: 2, Starts: "09:00", Ends: "17:00", Frequency: models.FrequencyWeekly, Bitmask: 0x3e}
	assert.True(t, errors.IsValidation(svc.CreateSchedule(ctx, probeSchedule)))
}

func TestCreateDeviceTypeFieldValidation(t *testing.T) {
	svc := testService(&fakeDeviceRepo{}, &fakeScheduleRepo{}, &fakeMeasurementRepo{}, nil)
	ctx := context.Background()

	plugWithoutIP := &models.Device{Name: "plug", Type: models.DeviceTypeSmartPlug, UserID: 1}
	assert.True(t, errors.IsValidation(svc.CreateDevice(ctx, plugWithoutIP)))

	probeWithIP := &models.Device{Name: "probe", Type: models.DeviceTypeTemperatureProbe, UserID: 1, SerialNumber: "28-aa", IPAddress: "10.0.0.1"}
	assert.True(t, errors.IsValidation(svc.CreateDevice(ctx, probeWithIP)))

	genericWithSerial := &models.Device{Name: "shelf", Type: models.DeviceTypeGeneric, UserID: 1, SerialNumber: "28-aa"}
	assert.True(t, errors.IsValidation(svc.CreateDevice(ctx, genericWithSerial)))

	unknownType := &models.Device{Name: "thing", Type: "toaster", UserID: 1}
	assert.True(t, errors.IsValidation(svc.CreateDevice(ctx, unknownType)))
}

func TestUpdateDeviceTypeTransition(t *testing.T) {
	ctx := context.Background()

	newPlugRepo := func() *fakeDeviceRepo {
		return &fakeDeviceRepo{devices: map[int64]*models.Device{
			1: {ID: 1, Name: "plug", Type: models.DeviceTypeSmartPlug, UserID: 1, IPAddress: "10.0.0.1"},
		}}
	}

	// smart_plug -> generic drops the stale ip_address
	devices := newPlugRepo()
	svc := testService(devices, &fakeScheduleRepo{}, &fakeMeasurementRepo{}, nil)
	updated, err := svc.UpdateDevice(ctx, &models.Device{ID: 1, Type: models.DeviceTypeGeneric})
	require.NoError(t, err)
	assert.Equal(t, models.DeviceTypeGeneric, updated.Type)
	assert.Empty(t, updated.IPAddress)

	// smart_plug -> temperature_probe works when the serial comes along
	devices = newPlugRepo()
	svc = testService(devices, &fakeScheduleRepo{}, &fakeMeasurementRepo{}, nil)
	updated, err = svc.UpdateDevice(ctx, &models.Device{ID: 1, Type: models.DeviceTypeTemperatureProbe, SerialNumber: "28-aa"})
	require.NoError(t, err)
	assert.Equal(t, "28-aa", updated.SerialNumber)
	assert.Empty(t, updated.IPAddress)

	// ... and fails validation when it does not
	devices = newPlugRepo()
	svc = testService(devices, &fakeScheduleRepo{}, &fakeMeasurementRepo{}, nil)
	_, err = svc.UpdateDevice(ctx, &models.Device{ID: 1, Type: models.DeviceTypeTemperatureProbe})
	assert.True(t, errors.IsValidation(err))
}

func TestGetDeviceStatusPrefersCache(t *testing.T) {
	devices := &fakeDeviceRepo{devices: map[int64]*models.Device{
		42: {ID: 42, Type: models.DeviceTypeSmartPlug},
	}}
	measurements := &fakeMeasurementRepo{latest: []models.Measurement{
		{DeviceID: 42, Key: "relay_state", Value: "0"},
	}}
	cache := &fakeCache{}
	cache.Set(context.Background(), 42, "relay_state", "1")

	svc := testService(devices, &fakeScheduleRepo{}, measurements, cache)
	status, err := svc.GetDeviceStatus(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "1", status.LastReadings["relay_state"])
}

func TestGetDeviceStatusFallsBackToStore(t *testing.T) {
	devices := &fakeDeviceRepo{devices: map[int64]*models.Device{
		42: {ID: 42, Type: models.DeviceTypeSmartPlug},
	}}
	measurements := &fakeMeasurementRepo{latest: []models.Measurement{
		{DeviceID: 42, Key: "relay_state", Value: "0"},
		{DeviceID: 42, Key: "power_mw", Value: "4250"},
	}}

	svc := testService(devices, &fakeScheduleRepo{}, measurements, nil)
	status, err := svc.GetDeviceStatus(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "0", status.LastReadings["relay_state"])
	assert.Equal(t, "4250", status.LastReadings["power_mw"])
}
