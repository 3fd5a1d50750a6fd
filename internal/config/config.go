// Package config provides environment-driven configuration for the
// monitoring engine.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Thresholds holds the call quality alerting thresholds.
type Thresholds struct {
	// PacketLossPercent is the maximum acceptable packet loss.
	// Default: 5.0
	PacketLossPercent float64

	// JitterMs is the maximum acceptable jitter in milliseconds.
	// Default: 30.0
	JitterMs float64

	// LatencyMs is the maximum acceptable latency in milliseconds.
	// Default: 150.0
	LatencyMs float64
}

// Retention holds per-entity retention windows.
type Retention struct {
	// HealthCheckDays is how long health check records are kept.
	// Default: 90
	HealthCheckDays int

	// TestCallDays is how long test call records are kept.
	// Default: 180
	TestCallDays int

	// AlertDays is how long resolved alerts are kept. Unresolved alerts
	// are never purged.
	// Default: 365
	AlertDays int
}

// Schedule holds the fixed job trigger times. All times are UTC.
type Schedule struct {
	// HealthCheckHour and HealthCheckMinute set the daily fleet sweep.
	// Default: 06:00
	HealthCheckHour   int
	HealthCheckMinute int

	// CleanupDayOfWeek, CleanupHour and CleanupMinute set the weekly
	// retention sweep. Default: Sunday 02:00.
	CleanupDayOfWeek time.Weekday
	CleanupHour      int
	CleanupMinute    int
}

// Config holds the engine configuration.
type Config struct {
	Thresholds Thresholds
	Retention  Retention
	Schedule   Schedule

	// TestCallDuration is how long a synthetic call runs before teardown.
	// Default: 120s
	TestCallDuration time.Duration

	// ProbeTimeout is the transport timeout for device and cloud probes.
	// Default: 30s
	ProbeTimeout time.Duration

	// WebexBaseURL is the cloud API base URL.
	WebexBaseURL string

	// WebexAccessToken authenticates cloud API requests.
	WebexAccessToken string

	// AdminEmails receives alert notifications. Empty disables email.
	AdminEmails []string

	// SMTP settings for the email sink.
	SMTPAddr string
	SMTPFrom string

	// ServiceNow settings for the ticket sink. Empty instance disables it.
	ServiceNowInstance string
	ServiceNowUsername string
	ServiceNowPassword string
}

// Default returns the configuration defaults without consulting the
// environment.
func Default() Config {
	return Config{
		Thresholds: Thresholds{
			PacketLossPercent: 5.0,
			JitterMs:          30.0,
			LatencyMs:         150.0,
		},
		Retention: Retention{
			HealthCheckDays: 90,
			TestCallDays:    180,
			AlertDays:       365,
		},
		Schedule: Schedule{
			HealthCheckHour:   6,
			HealthCheckMinute: 0,
			CleanupDayOfWeek:  time.Sunday,
			CleanupHour:       2,
			CleanupMinute:     0,
		},
		TestCallDuration: 120 * time.Second,
		ProbeTimeout:     30 * time.Second,
		WebexBaseURL:     "https://webexapis.com/v1",
	}
}

// FromEnv creates a Config from environment variables, falling back to
// defaults for anything unset.
func FromEnv() Config {
	cfg := Default()

	cfg.Thresholds.PacketLossPercent = envFloat("PACKET_LOSS_THRESHOLD", cfg.Thresholds.PacketLossPercent)
	cfg.Thresholds.JitterMs = envFloat("JITTER_THRESHOLD_MS", cfg.Thresholds.JitterMs)
	cfg.Thresholds.LatencyMs = envFloat("LATENCY_THRESHOLD_MS", cfg.Thresholds.LatencyMs)

	cfg.Retention.HealthCheckDays = envInt("HEALTH_CHECK_RETENTION_DAYS", cfg.Retention.HealthCheckDays)
	cfg.Retention.TestCallDays = envInt("CALL_DATA_RETENTION_DAYS", cfg.Retention.TestCallDays)
	cfg.Retention.AlertDays = envInt("ALERT_RETENTION_DAYS", cfg.Retention.AlertDays)

	if hh, mm, err := ParseTimeOfDay(os.Getenv("HEALTH_CHECK_TIME")); err == nil {
		cfg.Schedule.HealthCheckHour = hh
		cfg.Schedule.HealthCheckMinute = mm
	}
	cfg.Schedule.CleanupDayOfWeek = time.Weekday(envInt("CLEANUP_DAY_OF_WEEK", int(cfg.Schedule.CleanupDayOfWeek)))
	if hh, mm, err := ParseTimeOfDay(os.Getenv("CLEANUP_TIME")); err == nil {
		cfg.Schedule.CleanupHour = hh
		cfg.Schedule.CleanupMinute = mm
	}

	if secs := envInt("TEST_CALL_DURATION_SECONDS", 0); secs > 0 {
		cfg.TestCallDuration = time.Duration(secs) * time.Second
	}
	if secs := envInt("HEALTH_CHECK_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.ProbeTimeout = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("WEBEX_API_BASE_URL"); v != "" {
		cfg.WebexBaseURL = v
	}
	cfg.WebexAccessToken = os.Getenv("WEBEX_ACCESS_TOKEN")

	for _, addr := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			cfg.AdminEmails = append(cfg.AdminEmails, addr)
		}
	}
	cfg.SMTPAddr = os.Getenv("SMTP_ADDR")
	cfg.SMTPFrom = os.Getenv("SMTP_FROM")

	cfg.ServiceNowInstance = os.Getenv("SERVICENOW_INSTANCE")
	cfg.ServiceNowUsername = os.Getenv("SERVICENOW_USERNAME")
	cfg.ServiceNowPassword = os.Getenv("SERVICENOW_PASSWORD")

	return cfg
}

// ParseTimeOfDay parses a "HH:MM" 24-hour time string.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time of day %q out of range", s)
	}
	return hour, minute, nil
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
