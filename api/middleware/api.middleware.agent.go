// FilePath: api/middleware/api.middleware.agent.go
package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/greenstem/planthub/internal/errors"
)

// AgentAuthConfig carries the shared secret for the agent-facing
// telemetry route.
type AgentAuthConfig struct {
	SharedSecret string
	TokenTTL     time.Duration
}

// AgentAuthMiddleware verifies the HS256 bearer tokens the hub mints
// for its agents. User traffic goes through Keycloak instead; the
// agent's callback path deliberately stays independent of it.
type AgentAuthMiddleware struct {
	config AgentAuthConfig
}

func NewAgentAuthMiddleware(config AgentAuthConfig) *AgentAuthMiddleware {
	return &AgentAuthMiddleware{config: config}
}

// Authenticate validates the agent token on incoming requests
func (a *AgentAuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			handleError(w, errors.NewAuthError("no token provided", nil))
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(a.config.SharedSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			handleError(w, errors.NewAuthError("invalid agent token", err))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// IssueToken mints a fresh agent token. Called by the token endpoint
// after the shared secret has been checked.
func (a *AgentAuthMiddleware) IssueToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": "agent",
		"iat": now.Unix(),
		"exp": now.Add(a.config.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.SharedSecret))
}

// VerifySecret checks the shared secret presented to the token
// endpoint.
func (a *AgentAuthMiddleware) VerifySecret(secret string) bool {
	return secret != "" && secret == a.config.SharedSecret
}
