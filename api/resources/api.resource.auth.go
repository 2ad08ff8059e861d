// FilePath: api/resources/api.resource.auth.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/greenstem/planthub/api/middleware"
	"github.com/greenstem/planthub/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

// AuthHandlers encapsulates the agent token endpoint
type AuthHandlers struct {
	agentAuth *middleware.AgentAuthMiddleware
}

type tokenRequest struct {
	Secret string `json:"secret"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// @Summary Issue an agent token
// @Description Exchange the shared secret for a short-lived bearer token used on telemetry pushes
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body tokenRequest true "Shared secret"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} errors.APIError
// @Router /token [post]
func (h *AuthHandlers) IssueAgentToken(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if !h.agentAuth.VerifySecret(req.Secret) {
		respondWithError(w, errors.NewAuthError("invalid shared secret", nil).WithRequestID(requestID))
		return
	}

	token, err := h.agentAuth.IssueToken()
	if err != nil {
		respondWithError(w, errors.NewInternalError("failed to sign token", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, tokenResponse{Token: token})
}
