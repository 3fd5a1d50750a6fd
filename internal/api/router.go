// Package api provides the HTTP API for the room monitoring service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/api/handler"
	"github.com/roomwatch/roomwatch/internal/api/middleware"
	"github.com/roomwatch/roomwatch/internal/call"
	"github.com/roomwatch/roomwatch/internal/health"
	"github.com/roomwatch/roomwatch/internal/monitoring"
	"github.com/roomwatch/roomwatch/internal/room"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	Rooms        *room.Service
	Jobs         handler.Jobs
	Health       *health.Assessor
	Calls        *call.Orchestrator
	HealthChecks monitoring.HealthCheckRepository
	TestCalls    monitoring.TestCallRepository
	Alerts       *alert.Manager
	DB           handler.Pinger
}

// NewRouter creates a chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware, outermost first.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB)
	roomHandler := handler.NewRoomHandler(cfg.Rooms, cfg.Jobs)
	monitoringHandler := handler.NewMonitoringHandler(cfg.Health, cfg.Calls, cfg.HealthChecks, cfg.TestCalls)
	alertHandler := handler.NewAlertHandler(cfg.Alerts)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	// Manual triggers hit real devices and the cloud API.
	triggerRateLimit := middleware.RateLimitByIP(middleware.TriggerRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", roomHandler.ListRooms)
			r.Post("/", roomHandler.CreateRoom)

			r.Route("/{roomId}", func(r chi.Router) {
				r.Get("/", roomHandler.GetRoom)
				r.Put("/", roomHandler.UpdateRoom)
				r.Delete("/", roomHandler.DeleteRoom)

				r.With(triggerRateLimit).Post("/health-check", monitoringHandler.TriggerHealthCheck)
				r.With(triggerRateLimit).Post("/test-call", monitoringHandler.TriggerTestCall)

				r.Get("/health-checks", monitoringHandler.ListHealthChecks)
				r.Get("/test-calls", monitoringHandler.ListTestCalls)
			})
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", alertHandler.ListAlerts)
			r.Post("/{alertId}/acknowledge", alertHandler.AcknowledgeAlert)
			r.Post("/{alertId}/resolve", alertHandler.ResolveAlert)
		})
	})

	return r
}
