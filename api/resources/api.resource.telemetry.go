// FilePath: api/resources/api.resource.telemetry.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/hubservice"
	"github.com/greenstem/planthub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// TelemetryHandlers encapsulates the telemetry HTTP handlers
type TelemetryHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Ingest telemetry
// @Description Accept one device's readings pushed by an agent
// @Tags telemetry
// @Accept json
// @Produce json
// @Param push body models.TelemetryPush true "Device readings"
// @Success 200 {object} map[string]int
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /requests [post]
// @Security BearerAuth
func (h *TelemetryHandlers) IngestTelemetry(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var push models.TelemetryPush
	if err := json.NewDecoder(r.Body).Decode(&push); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	stored, err := h.hubservice.IngestTelemetry(r.Context(), push.DeviceID, push.Payload)
	if err != nil {
		nuts.L.Warnf("[TelemetryHandler] Failed to ingest push for device %d: %v", push.DeviceID, err)
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"stored": stored})
}

// @Summary Get device measurements
// @Description Get a device's stored measurements within a time range
// @Tags telemetry
// @Produce json
// @Param id path int true "Device ID"
// @Param start query string false "Start time (RFC3339)"
// @Param end query string false "End time (RFC3339)"
// @Success 200 {array} models.Measurement
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/measurements [get]
// @Security BearerAuth
func (h *TelemetryHandlers) GetMeasurements(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	deviceID, err := parseDeviceID(r)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid device id", err).WithRequestID(requestID))
		return
	}

	timeRange := parseTimeRange(r)
	measurements, err := h.hubservice.GetMeasurements(r.Context(), deviceID, timeRange.start, timeRange.end)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, measurements)
}
