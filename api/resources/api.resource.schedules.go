// FilePath: api/resources/api.resource.schedules.go
package resources

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/hubservice"
	"github.com/greenstem/planthub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ScheduleHandlers encapsulates the schedule-related HTTP handlers
type ScheduleHandlers struct {
	hubservice *hubservice.HubService
}

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// scheduleForm is the form-encoded schedule submission. The bitmask
// travels as 7 binary digits, Sunday first ("0111110" is Mon-Fri).
type scheduleForm struct {
	DeviceID  int64  `schema:"device_id,required"`
	Starts    string `schema:"starts,required"`
	Ends      string `schema:"ends,required"`
	Frequency string `schema:"frequency,required"`
	Bitmask   string `schema:"bitmask,required"`
}

// @Summary Create a schedule
// @Description Create an on-window for an actuatable device
// @Tags schedules
// @Accept x-www-form-urlencoded
// @Produce json
// @Param device_id formData int true "Device ID"
// @Param starts formData string true "Window start (HH:MM)"
// @Param ends formData string true "Window end (HH:MM)"
// @Param frequency formData string true "weekly or monthly"
// @Param bitmask formData string true "7 binary digits, Sunday first"
// @Success 201 {object} models.Schedule
// @Failure 400 {object} errors.APIError
// @Router /schedules [post]
// @Security BearerAuth
func (h *ScheduleHandlers) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	if err := r.ParseForm(); err != nil {
		respondWithError(w, errors.NewValidationError("invalid form body", err).WithRequestID(requestID))
		return
	}

	var form scheduleForm
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		respondWithError(w, errors.NewValidationError("invalid schedule form", err).WithRequestID(requestID))
		return
	}

	bitmask, err := models.ParseBitmask(form.Bitmask)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid bitmask", err).WithRequestID(requestID))
		return
	}

	schedule := models.Schedule{
		DeviceID:  form.DeviceID,
		Starts:    form.Starts,
		Ends:      form.Ends,
		Frequency: models.ScheduleFrequency(form.Frequency),
		Bitmask:   bitmask,
	}

	if err := h.hubservice.CreateSchedule(r.Context(), &schedule); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, schedule)
}

// @Summary Delete a schedule
// @Tags schedules
// @Param id path int true "Schedule ID"
// @Success 204
// @Failure 404 {object} errors.APIError
// @Router /schedules/{id} [delete]
// @Security BearerAuth
func (h *ScheduleHandlers) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid schedule id", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.DeleteSchedule(r.Context(), id); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary List device schedules
// @Description List a device's schedules in definition order
// @Tags schedules
// @Produce json
// @Param id path int true "Device ID"
// @Success 200 {array} models.Schedule
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/schedules [get]
// @Security BearerAuth
func (h *ScheduleHandlers) ListDeviceSchedules(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	deviceID, err := parseDeviceID(r)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid device id", err).WithRequestID(requestID))
		return
	}

	schedules, err := h.hubservice.ListSchedulesByDevice(r.Context(), deviceID)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, schedules)
}
