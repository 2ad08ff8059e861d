// FilePath: api/resources/api.resource.telemetry_test.go
package resources

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/greenstem/planthub/internal/hubservice"
	"github.com/greenstem/planthub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func telemetryHandler(measurements *fakeMeasurementRepo) *TelemetryHandlers {
	devices := &fakeDeviceRepo{devices: map[int64]*models.Device{
		42: {ID: 42, Type: models.DeviceTypeSmartPlug, IPAddress: "10.0.0.42"},
	}}
	svc := hubservice.New(devices, &fakeScheduleRepo{}, measurements, nil)
	return &TelemetryHandlers{hubservice: svc}
}

func postTelemetry(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestIngestTelemetryAcceptsSingleObject(t *testing.T) {
	measurements := &fakeMeasurementRepo{}
	handler := telemetryHandler(measurements)

	rec := postTelemetry(t, handler.IngestTelemetry,
		`{"device_id": 42, "payload": {"temperature": "72.1"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, measurements.inserted, 1)
	assert.Equal(t, "72.1", measurements.inserted["temperature"])
}

func TestIngestTelemetryRejectsMalformedBody(t *testing.T) {
	measurements := &fakeMeasurementRepo{}
	handler := telemetryHandler(measurements)

	rec := postTelemetry(t, handler.IngestTelemetry, `not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, measurements.inserted)
}

func TestIngestTelemetryUnknownDevice(t *testing.T) {
	measurements := &fakeMeasurementRepo{}
	handler := telemetryHandler(measurements)

	rec := postTelemetry(t, handler.IngestTelemetry,
		`{"device_id": 99, "payload": {"temperature": "72.1"}}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, measurements.inserted)
}
