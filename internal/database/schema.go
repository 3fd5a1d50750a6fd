package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Statements are idempotent so repeated
// startups are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id                   TEXT PRIMARY KEY,
		name                 TEXT NOT NULL,
		location             TEXT,
		ip_address           TEXT,
		webex_room_id        TEXT UNIQUE,
		device_type          TEXT,
		status               TEXT NOT NULL DEFAULT 'unknown',
		last_health_check    TIMESTAMPTZ,
		health_check_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		test_call_enabled    BOOLEAN NOT NULL DEFAULT TRUE,
		test_call_time       TEXT NOT NULL DEFAULT '07:00',
		created_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS health_checks (
		id                TEXT PRIMARY KEY,
		room_id           TEXT NOT NULL REFERENCES rooms(id),
		created_at        TIMESTAMPTZ NOT NULL,
		status            TEXT NOT NULL,
		device_online     BOOLEAN NOT NULL DEFAULT FALSE,
		camera_status     TEXT NOT NULL DEFAULT 'unknown',
		microphone_status TEXT NOT NULL DEFAULT 'unknown',
		speaker_status    TEXT NOT NULL DEFAULT 'unknown',
		software_version  TEXT,
		uptime_hours      INTEGER,
		temperature_c     DOUBLE PRECISION,
		error_message     TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_health_checks_room_created
		ON health_checks (room_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS test_calls (
		id                  TEXT PRIMARY KEY,
		room_id             TEXT NOT NULL REFERENCES rooms(id),
		created_at          TIMESTAMPTZ NOT NULL,
		call_id             TEXT,
		duration_seconds    INTEGER,
		status              TEXT NOT NULL,
		quality_score       DOUBLE PRECISION,
		packet_loss_percent DOUBLE PRECISION,
		jitter_ms           DOUBLE PRECISION,
		latency_ms          DOUBLE PRECISION,
		resolution          TEXT,
		frame_rate          INTEGER,
		audio_quality       TEXT,
		video_quality       TEXT,
		error_message       TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_test_calls_room_created
		ON test_calls (room_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id          TEXT PRIMARY KEY,
		room_id     TEXT NOT NULL REFERENCES rooms(id),
		created_at  TIMESTAMPTZ NOT NULL,
		alert_type  TEXT NOT NULL,
		severity    TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT,
		status      TEXT NOT NULL DEFAULT 'open',
		ticket_id   TEXT,
		resolved_at TIMESTAMPTZ,
		resolved_by TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_room_created
		ON alerts (room_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_status
		ON alerts (status, created_at)`,
}

// EnsureSchema creates the monitoring tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
