// FilePath: internal/agent/agent.go
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/greenstem/planthub/internal/agent/drivers"
	"github.com/greenstem/planthub/internal/config"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// statusReporter is the slice of the hub reporter the batch processor
// needs.
type statusReporter interface {
	Report(ctx context.Context, deviceID int64, payload map[string]any) error
}

// Agent is the edge-side process: it receives task batches from the
// hub, drives the local devices and pushes status readings back.
type Agent struct {
	config   *config.AgentConfig
	registry *drivers.Registry
	reporter statusReporter
	srv      *http.Server
}

// New creates an agent with the default driver registry.
func New(cfg *config.AgentConfig) *Agent {
	registry := drivers.NewRegistry()
	registry.Register(models.DeviceTypeSmartPlug, drivers.NewSmartPlugFactory(cfg.Plug.DialTimeout, cfg.Plug.IOTimeout))
	registry.Register(models.DeviceTypeTemperatureProbe, drivers.NewTemperatureProbeFactory(cfg.Probe))

	return &Agent{
		config:   cfg,
		registry: registry,
		reporter: NewHubReporter(cfg.Hub),
	}
}

// Start authenticates against the hub and listens for task batches
// until a shutdown signal arrives.
func (a *Agent) Start() error {
	if reporter, ok := a.reporter.(*HubReporter); ok {
		if err := reporter.Authenticate(context.Background()); err != nil {
			return err
		}
	}

	router := mux.NewRouter()
	api := router.PathPrefix("/api/" + apiVersion).Subrouter()
	api.HandleFunc("/info", a.handleInfo).Methods(http.MethodGet)
	api.HandleFunc("/requests", a.handleRequests).Methods(http.MethodPost)

	a.srv = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler: router,
	}

	go func() {
		nuts.L.Infof("[Agent] Listening on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Agent] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return a.waitForShutdown()
}

func (a *Agent) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Agent] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	return a.srv.Shutdown(ctx)
}

func (a *Agent) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"version":"` + nuts.GetVersion() + `"}`))
}

// handleRequests accepts one task batch from the hub. The batch is
// acknowledged as soon as it parses; per-device failures are logged, not
// reported back, because the next dispatch tick resends the full
// desired state anyway.
func (a *Agent) handleRequests(w http.ResponseWriter, r *http.Request) {
	var tasks []models.Task
	if err := json.NewDecoder(r.Body).Decode(&tasks); err != nil {
		apiErr := errors.NewValidationError("invalid task batch", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(apiErr.Code)
		json.NewEncoder(w).Encode(apiErr)
		return
	}

	nuts.L.Infof("[Agent] Received %d task(s) from %s", len(tasks), r.RemoteAddr)
	a.ProcessBatch(r.Context(), tasks)

	w.WriteHeader(http.StatusOK)
}

// ProcessBatch executes every task in the batch. Items are isolated: an
// unknown device type or a failing device never stops the remaining
// tasks.
func (a *Agent) ProcessBatch(ctx context.Context, tasks []models.Task) {
	for _, task := range tasks {
		driver, err := a.registry.Driver(task.Info)
		if err != nil {
			nuts.L.Warnf("[Agent] Skipping device %d: %v", task.Info.ID, err)
			continue
		}

		for _, action := range task.Actions {
			if err := a.runAction(ctx, driver, task.Info, action); err != nil {
				nuts.L.Errorf("[Agent] Action %q on device %d failed: %v", action, task.Info.ID, err)
			}
		}
	}
}

// runAction executes one action. Status actions read the device and
// push the reading back to the hub; on/off actions actuate.
func (a *Agent) runAction(ctx context.Context, driver drivers.Driver, info models.DeviceInfo, action models.Action) error {
	switch action {
	case models.ActionStatus:
		payload, err := driver.ReadStatus(ctx)
		if err != nil {
			return err
		}
		return a.reporter.Report(ctx, info.ID, payload)
	case models.ActionOn, models.ActionOff:
		return driver.Actuate(ctx, action)
	default:
		return errors.NewValidationError(fmt.Sprintf("unknown action %q", action), nil)
	}
}
