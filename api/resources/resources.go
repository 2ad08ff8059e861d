// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/greenstem/planthub/api/middleware"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/hubservice"
	"github.com/greenstem/planthub/internal/repository"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Devices     *DeviceHandlers
	Schedules   *ScheduleHandlers
	Telemetry   *TelemetryHandlers
	Tasks       *TaskHandlers
	Auth        *AuthHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService, agentAuth *middleware.AgentAuthMiddleware) *Resources {
	return &Resources{
		Devices:   &DeviceHandlers{hubservice: svc},
		Schedules: &ScheduleHandlers{hubservice: svc},
		Telemetry: &TelemetryHandlers{hubservice: svc},
		Tasks:     &TaskHandlers{hubservice: svc},
		Auth:      &AuthHandlers{agentAuth: agentAuth},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// Helper functions shared by all handlers

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, apiErr *errors.APIError) {
	respondWithJSON(w, apiErr.Code, apiErr)
}

// respondWithServiceError maps service and repository errors onto the
// API error taxonomy. Typed errors pass through unchanged; repository
// sentinels get a matching status; everything else is a 500.
func respondWithServiceError(w http.ResponseWriter, requestID string, err error) {
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	if stderrors.Is(err, repository.ErrNotFound) {
		respondWithError(w, errors.NewNotFoundError("resource not found", err).WithRequestID(requestID))
		return
	}
	if stderrors.Is(err, repository.ErrInvalidInput) {
		respondWithError(w, errors.NewValidationError("invalid input", err).WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("unexpected error", err).WithRequestID(requestID))
}

type timeRange struct {
	start time.Time
	end   time.Time
}

func parseTimeRange(r *http.Request) timeRange {
	query := r.URL.Query()
	now := time.Now()

	// Default to the last 24 hours
	start := now.Add(-24 * time.Hour)
	if startStr := query.Get("start"); startStr != "" {
		if parsed, err := time.Parse(time.RFC3339, startStr); err == nil {
			start = parsed
		}
	}

	end := now
	if endStr := query.Get("end"); endStr != "" {
		if parsed, err := time.Parse(time.RFC3339, endStr); err == nil {
			end = parsed
		}
	}

	return timeRange{start: start, end: end}
}
