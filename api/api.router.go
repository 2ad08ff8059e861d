// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/greenstem/planthub/api/middleware"
	"github.com/greenstem/planthub/api/resources"
	"github.com/greenstem/planthub/internal/hubservice"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.KeycloakMiddleware
	agentAuth *middleware.AgentAuthMiddleware
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService, keycloakConfig middleware.KeycloakConfig, agentAuthConfig middleware.AgentAuthConfig) *Router {
	agentAuth := middleware.NewAgentAuthMiddleware(agentAuthConfig)
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewKeycloakMiddleware(keycloakConfig),
		agentAuth: agentAuth,
		resources: resources.NewResources(svc, agentAuth),
	}

	r.setupRoutes()
	return r
}

// Resources exposes the handler set so the server can attach the health
// handler.
func (r *Router) Resources() *resources.Resources {
	return r.resources
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		if r.resources.HealthCheck != nil {
			r.resources.HealthCheck(w, req)
		}
	}).Methods(http.MethodGet)
	api.HandleFunc("/token", r.resources.Auth.IssueAgentToken).Methods(http.MethodPost)

	// Agent routes, gated by the minted bearer token
	agent := api.PathPrefix("").Subrouter()
	agent.Use(r.agentAuth.Authenticate)
	agent.HandleFunc("/requests", r.resources.Telemetry.IngestTelemetry).Methods(http.MethodPost)

	// Protected user routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.auth.Authenticate)

	// Devices
	devices := protected.PathPrefix("/devices").Subrouter()
	devices.HandleFunc("", r.resources.Devices.ListDevices).Methods(http.MethodGet)
	devices.HandleFunc("", r.resources.Devices.CreateDevice).Methods(http.MethodPost)
	devices.HandleFunc("/{id}", r.resources.Devices.GetDevice).Methods(http.MethodGet)
	devices.HandleFunc("/{id}", r.resources.Devices.UpdateDevice).Methods(http.MethodPut)
	devices.HandleFunc("/{id}", r.resources.Devices.DeleteDevice).Methods(http.MethodDelete)
	devices.HandleFunc("/{id}/status", r.resources.Devices.GetDeviceStatus).Methods(http.MethodGet)
	devices.HandleFunc("/{id}/schedules", r.resources.Schedules.ListDeviceSchedules).Methods(http.MethodGet)
	devices.HandleFunc("/{id}/measurements", r.resources.Telemetry.GetMeasurements).Methods(http.MethodGet)

	// Schedules
	schedules := protected.PathPrefix("/schedules").Subrouter()
	schedules.HandleFunc("", r.resources.Schedules.CreateSchedule).Methods(http.MethodPost)
	schedules.HandleFunc("/{id}", r.resources.Schedules.DeleteSchedule).Methods(http.MethodDelete)

	// Task preview
	protected.HandleFunc("/tasks", r.resources.Tasks.PreviewTasks).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
