// Package main provides the entrypoint for the room monitoring API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/api"
	"github.com/roomwatch/roomwatch/internal/api/middleware"
	"github.com/roomwatch/roomwatch/internal/call"
	"github.com/roomwatch/roomwatch/internal/config"
	"github.com/roomwatch/roomwatch/internal/database"
	"github.com/roomwatch/roomwatch/internal/health"
	"github.com/roomwatch/roomwatch/internal/monitoring"
	"github.com/roomwatch/roomwatch/internal/notify"
	"github.com/roomwatch/roomwatch/internal/probe"
	"github.com/roomwatch/roomwatch/internal/provider/resilience"
	"github.com/roomwatch/roomwatch/internal/quality"
	"github.com/roomwatch/roomwatch/internal/retention"
	"github.com/roomwatch/roomwatch/internal/room"
	"github.com/roomwatch/roomwatch/internal/roomos"
	"github.com/roomwatch/roomwatch/internal/scheduler"
	"github.com/roomwatch/roomwatch/internal/telemetry"
	"github.com/roomwatch/roomwatch/internal/webex"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "roomwatch-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting room monitoring API")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	// Telemetry.
	tp, err := telemetry.Init(ctx, telemetry.FromEnv(serviceName, Version))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Database. Connect applies the idempotent schema unless disabled.
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Repositories.
	roomRepo := room.NewPostgresRepository(pool)
	checkRepo := monitoring.NewPostgresHealthCheckRepository(pool)
	callRepo := monitoring.NewPostgresTestCallRepository(pool)
	alertRepo := alert.NewPostgresRepository(pool)

	// Notification sinks.
	var sinks []alert.Notifier
	if cfg.SMTPAddr != "" && len(cfg.AdminEmails) > 0 {
		sinks = append(sinks, notify.NewEmailSink(cfg.SMTPAddr, cfg.SMTPFrom, cfg.AdminEmails))
		log.Info().Int("recipients", len(cfg.AdminEmails)).Msg("email notifications enabled")
	}
	if cfg.ServiceNowInstance != "" {
		snowClient := resilience.NewClient(resilience.Config{Name: "servicenow"})
		sinks = append(sinks, notify.NewServiceNowSink(cfg.ServiceNowInstance, cfg.ServiceNowUsername, cfg.ServiceNowPassword, snowClient))
		log.Info().Str("instance", cfg.ServiceNowInstance).Msg("servicenow notifications enabled")
	}
	var notifier alert.Notifier
	if fanout := notify.NewFanout(log, sinks...); fanout != nil {
		notifier = fanout
	} else {
		log.Warn().Msg("no notification sinks configured, alerts are log-only")
	}

	alertManager := alert.NewManager(alertRepo, notifier, log)

	// External capability clients.
	webexClient := webex.NewClient(webex.ClientConfig{
		AccessToken: cfg.WebexAccessToken,
		BaseURL:     cfg.WebexBaseURL,
		Timeout:     cfg.ProbeTimeout,
		Logger:      log,
	})

	deviceUsername := os.Getenv("ROOMOS_USERNAME")
	devicePassword := os.Getenv("ROOMOS_PASSWORD")
	newDeviceClient := func(address string) *roomos.Client {
		return roomos.NewClient(roomos.ClientConfig{
			Address:  address,
			Username: deviceUsername,
			Password: devicePassword,
			Timeout:  cfg.ProbeTimeout,
			Logger:   log,
		})
	}

	var cloudProber probe.CloudProber
	if cfg.WebexAccessToken != "" {
		cloudProber = webexClient
	} else {
		log.Warn().Msg("no cloud access token configured, cloud probes and test calls will fail")
	}
	selector := probe.NewSelector(
		func(address string) probe.DirectProber { return newDeviceClient(address) },
		cloudProber,
	)

	// Assessment engine.
	healthAssessor := health.NewAssessor(roomRepo, checkRepo, selector, alertManager, log)

	sched := scheduler.New(roomRepo, cfg.Schedule, log)

	orchestrator := call.NewOrchestrator(call.Config{
		Rooms:        roomRepo,
		Calls:        callRepo,
		Meetings:     webexClient,
		NewDevice:    func(address string) call.DeviceController { return newDeviceClient(address) },
		Quality:      quality.NewAssessor(cfg.Thresholds),
		Alerts:       alertManager,
		Teardowns:    sched,
		CallDuration: cfg.TestCallDuration,
		Logger:       log,
	})

	sweeper := retention.NewSweeper(retention.NewPostgresStore(pool), cfg.Retention, log)

	sched.Bind(healthRunner{healthAssessor}, callRunner{orchestrator}, sweeper)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	roomService := room.NewService(roomRepo, checkRepo, callRepo, alertRepo)

	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		Metrics:      metrics,
		Rooms:        roomService,
		Jobs:         sched,
		Health:       healthAssessor,
		Calls:        orchestrator,
		HealthChecks: checkRepo,
		TestCalls:    callRepo,
		Alerts:       alertManager,
		DB:           pool,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute, // manual health checks probe real devices
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// healthRunner adapts the health assessor to the scheduler's runner shape.
type healthRunner struct {
	assessor *health.Assessor
}

func (r healthRunner) CheckRoom(ctx context.Context, roomID string) error {
	_, err := r.assessor.Check(ctx, roomID)
	return err
}

// callRunner adapts the call orchestrator to the scheduler's runner shape.
type callRunner struct {
	orchestrator *call.Orchestrator
}

func (r callRunner) StartCall(ctx context.Context, roomID string) error {
	_, err := r.orchestrator.Start(ctx, roomID)
	return err
}

func (r callRunner) EndCall(ctx context.Context, callID string) error {
	return r.orchestrator.Teardown(ctx, callID)
}
