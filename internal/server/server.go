// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/greenstem/planthub/api"
	"github.com/greenstem/planthub/api/middleware"
	"github.com/greenstem/planthub/internal/config"
	"github.com/greenstem/planthub/internal/database"
	"github.com/greenstem/planthub/internal/hubservice"
	"github.com/greenstem/planthub/internal/monitoring"
	"github.com/greenstem/planthub/internal/repository/postgres"
	"github.com/greenstem/planthub/internal/repository/rediscache"
	"github.com/greenstem/planthub/internal/repository/timescale"
	"github.com/greenstem/planthub/internal/scheduler"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents the hub HTTP server plus the dispatcher loop
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
	dispatcher *scheduler.Dispatcher
	cache      *rediscache.LatestReadingCache

	stopDispatch context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start wires the service graph, launches the dispatcher and listens for
// requests until a shutdown signal arrives.
func (s *Server) Start() error {
	s.hubservice = s.initializeHubService()
	s.monitoring = monitoring.NewService(monitoring.Config{
		PrometheusEndpoint: s.config.Monitoring.PrometheusEndpoint,
		LokiEndpoint:       s.config.Monitoring.LokiEndpoint,
	})

	s.setupCleanupHandlers()

	router := api.NewRouter(
		s.hubservice,
		middleware.KeycloakConfig{
			URL:          s.config.Keycloak.URL,
			Realm:        s.config.Keycloak.Realm,
			ClientID:     s.config.Keycloak.ClientID,
			ClientSecret: s.config.Keycloak.ClientSecret,
		},
		middleware.AgentAuthConfig{
			SharedSecret: s.config.AgentAuth.SharedSecret,
			TokenTTL:     s.config.AgentAuth.TokenTTL,
		},
	)
	router.Resources().SetHealthCheck(s.handleHealth())

	s.srv.Handler = gorillahandlers.CombinedLoggingHandler(os.Stdout,
		gorillahandlers.CORS(
			gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
			gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		)(router))

	s.startDispatcher()

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// startDispatcher launches the recurring task dispatch loop when
// enabled.
func (s *Server) startDispatcher() {
	if !s.config.Dispatch.Enabled {
		nuts.L.Infof("[Server] Dispatch disabled, tasks will not be pushed")
		return
	}

	s.dispatcher = scheduler.NewDispatcher(s.hubservice.Devices, s.hubservice.Schedules, s.config.Dispatch)

	ctx, cancel := context.WithCancel(context.Background())
	s.stopDispatch = cancel
	go s.dispatcher.Run(ctx)
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	if s.stopDispatch != nil {
		s.stopDispatch()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			nuts.L.Warnf("[Server] Error closing reading cache: %v", err)
		}
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
	}
}

func (s *Server) setupCleanupHandlers() {
	// Handle device deletion events
	s.hubservice.Cleanup.OnCleanup("device.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] Device %s and all associated data deleted", id)
		s.monitoring.RecordEvent("device_deletion", map[string]string{
			"device_id": id,
		})
	})

	// Handle measurement deletion events
	s.hubservice.Cleanup.OnCleanup("measurements.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] All measurements for device %s deleted", id)
		s.monitoring.RecordEvent("measurements_deletion", map[string]string{
			"device_id": id,
		})
	})
}

// initializeHubService creates and configures the hub service
func (s *Server) initializeHubService() *hubservice.HubService {
	tsdb := initTimescaleDB(s.config.Database.TimescaleDB)
	appDB := initAppDB(s.config.Database.AppDB)

	devices := postgres.NewDeviceRepository(appDB)
	schedules := postgres.NewScheduleRepository(appDB)

	measurements, err := timescale.NewMeasurementRepository(tsdb)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize measurement repository: %v", err)
	}

	s.cache = rediscache.New(s.config.Redis)

	return hubservice.New(devices, schedules, measurements, s.cache)
}

func initTimescaleDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewTimescaleDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to TimescaleDB: %v", err)
	}
	if err := wrappedDB.Ping(context.Background()); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping TimescaleDB: %v", err)
	}
	return wrappedDB
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to AppDB: %v", err)
	}
	if err := wrappedDB.Ping(context.Background()); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping AppDB: %v", err)
	}
	return wrappedDB
}
