// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/hubservice"
	"github.com/greenstem/planthub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceHandlers encapsulates the device-related HTTP handlers
type DeviceHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Create a new device
// @Description Register a device with its type-specific connection fields
// @Tags devices
// @Accept json
// @Produce json
// @Param device body models.Device true "Device details"
// @Success 201 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /devices [post]
// @Security BearerAuth
func (h *DeviceHandlers) CreateDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var device models.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.CreateDevice(r.Context(), &device); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, device)
}

// @Summary List devices
// @Description List all devices belonging to an owner
// @Tags devices
// @Produce json
// @Param user_id query int true "Owner ID"
// @Success 200 {array} models.Device
// @Failure 400 {object} errors.APIError
// @Router /devices [get]
// @Security BearerAuth
func (h *DeviceHandlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid user_id", err).WithRequestID(requestID))
		return
	}

	devices, err := h.hubservice.ListDevices(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, devices)
}

// @Summary Get a device
// @Tags devices
// @Produce json
// @Param id path int true "Device ID"
// @Success 200 {object} models.Device
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [get]
// @Security BearerAuth
func (h *DeviceHandlers) GetDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	id, err := parseDeviceID(r)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid device id", err).WithRequestID(requestID))
		return
	}

	device, err := h.hubservice.GetDevice(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary Update a device
// @Description Apply a partial update; empty fields keep their stored values
// @Tags devices
// @Accept json
// @Produce json
// @Param id path int true "Device ID"
// @Param device body models.Device true "Fields to update"
// @Success 200 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [put]
// @Security BearerAuth
func (h *DeviceHandlers) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	id, err := parseDeviceID(r)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid device id", err).WithRequestID(requestID))
		return
	}

	var update models.Device
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	update.ID = id

	device, err := h.hubservice.UpdateDevice(r.Context(), &update)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary Delete a device
// @Description Delete a device together with its schedules and measurements
// @Tags devices
// @Param id path int true "Device ID"
// @Success 204
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [delete]
// @Security BearerAuth
func (h *DeviceHandlers) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	id, err := parseDeviceID(r)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid device id", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.DeleteDevice(r.Context(), id); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Get device status
// @Description Get the device row together with its latest telemetry readings
// @Tags devices
// @Produce json
// @Param id path int true "Device ID"
// @Success 200 {object} hubservice.DeviceStatus
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/status [get]
// @Security BearerAuth
func (h *DeviceHandlers) GetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	id, err := parseDeviceID(r)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid device id", err).WithRequestID(requestID))
		return
	}

	status, err := h.hubservice.GetDeviceStatus(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

func parseDeviceID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
