// FilePath: api/resources/api.resource.tasks.go
package resources

import (
	"net/http"
	"strconv"
	"time"

	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/hubservice"
	"github.com/greenstem/planthub/internal/scheduler"
	nuts "github.com/vaudience/go-nuts"
)

// TaskHandlers encapsulates the task preview HTTP handlers
type TaskHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Preview tasks
// @Description Evaluate an owner's devices against their schedules right now, without dispatching
// @Tags tasks
// @Produce json
// @Param user_id query int true "Owner ID"
// @Success 200 {array} models.Task
// @Failure 400 {object} errors.APIError
// @Router /tasks [get]
// @Security BearerAuth
func (h *TaskHandlers) PreviewTasks(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid user_id", err).WithRequestID(requestID))
		return
	}

	tasks, err := scheduler.BuildTasks(r.Context(), h.hubservice.Devices, h.hubservice.Schedules, userID, time.Now())
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, tasks)
}
