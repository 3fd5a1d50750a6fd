package monitoring

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresHealthCheckRepository is a PostgreSQL implementation of
// HealthCheckRepository.
type PostgresHealthCheckRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresHealthCheckRepository creates a new PostgreSQL health check
// repository.
func NewPostgresHealthCheckRepository(pool *pgxpool.Pool) *PostgresHealthCheckRepository {
	return &PostgresHealthCheckRepository{pool: pool}
}

// Create persists a new health check record.
func (r *PostgresHealthCheckRepository) Create(ctx context.Context, hc *HealthCheck) error {
	query := `
		INSERT INTO health_checks (id, room_id, created_at, status, device_online,
			camera_status, microphone_status, speaker_status, software_version,
			uptime_hours, temperature_c, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		hc.ID,
		hc.RoomID,
		hc.CreatedAt,
		hc.Status,
		hc.DeviceOnline,
		hc.CameraStatus,
		hc.MicrophoneStatus,
		hc.SpeakerStatus,
		hc.SoftwareVersion,
		hc.UptimeHours,
		hc.TemperatureC,
		hc.ErrorMessage,
	)
	return err
}

// ListByRoom retrieves the most recent health checks for a room.
func (r *PostgresHealthCheckRepository) ListByRoom(ctx context.Context, roomID string, opts ListOptions) ([]*HealthCheck, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, room_id, created_at, status, device_online, camera_status,
			microphone_status, speaker_status, software_version, uptime_hours,
			temperature_c, error_message
		FROM health_checks
		WHERE room_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []*HealthCheck
	for rows.Next() {
		var hc HealthCheck
		err := rows.Scan(
			&hc.ID,
			&hc.RoomID,
			&hc.CreatedAt,
			&hc.Status,
			&hc.DeviceOnline,
			&hc.CameraStatus,
			&hc.MicrophoneStatus,
			&hc.SpeakerStatus,
			&hc.SoftwareVersion,
			&hc.UptimeHours,
			&hc.TemperatureC,
			&hc.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		checks = append(checks, &hc)
	}

	return checks, rows.Err()
}

// DeleteByRoom removes all health checks for a room.
func (r *PostgresHealthCheckRepository) DeleteByRoom(ctx context.Context, roomID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM health_checks WHERE room_id = $1`, roomID)
	return err
}

// DeleteOlderThan removes health checks created before the cutoff.
func (r *PostgresHealthCheckRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM health_checks WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// PostgresTestCallRepository is a PostgreSQL implementation of
// TestCallRepository.
type PostgresTestCallRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTestCallRepository creates a new PostgreSQL test call
// repository.
func NewPostgresTestCallRepository(pool *pgxpool.Pool) *PostgresTestCallRepository {
	return &PostgresTestCallRepository{pool: pool}
}

const testCallColumns = `id, room_id, created_at, call_id, duration_seconds, status,
	quality_score, packet_loss_percent, jitter_ms, latency_ms, resolution,
	frame_rate, audio_quality, video_quality, error_message`

// Get retrieves a test call by ID.
func (r *PostgresTestCallRepository) Get(ctx context.Context, id string) (*TestCall, error) {
	query := `SELECT ` + testCallColumns + ` FROM test_calls WHERE id = $1`

	var tc TestCall
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&tc.ID,
		&tc.RoomID,
		&tc.CreatedAt,
		&tc.CallID,
		&tc.DurationSeconds,
		&tc.Status,
		&tc.QualityScore,
		&tc.PacketLossPercent,
		&tc.JitterMs,
		&tc.LatencyMs,
		&tc.Resolution,
		&tc.FrameRate,
		&tc.AudioQuality,
		&tc.VideoQuality,
		&tc.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestCallNotFound
		}
		return nil, err
	}

	return &tc, nil
}

// Create persists a new test call record.
func (r *PostgresTestCallRepository) Create(ctx context.Context, tc *TestCall) error {
	query := `
		INSERT INTO test_calls (` + testCallColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		tc.ID,
		tc.RoomID,
		tc.CreatedAt,
		tc.CallID,
		tc.DurationSeconds,
		tc.Status,
		tc.QualityScore,
		tc.PacketLossPercent,
		tc.JitterMs,
		tc.LatencyMs,
		tc.Resolution,
		tc.FrameRate,
		tc.AudioQuality,
		tc.VideoQuality,
		tc.ErrorMessage,
	)
	return err
}

// Update updates an in-flight test call record.
func (r *PostgresTestCallRepository) Update(ctx context.Context, tc *TestCall) error {
	query := `
		UPDATE test_calls SET
			call_id = $2,
			duration_seconds = $3,
			status = $4,
			quality_score = $5,
			packet_loss_percent = $6,
			jitter_ms = $7,
			latency_ms = $8,
			resolution = $9,
			frame_rate = $10,
			audio_quality = $11,
			video_quality = $12,
			error_message = $13
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		tc.ID,
		tc.CallID,
		tc.DurationSeconds,
		tc.Status,
		tc.QualityScore,
		tc.PacketLossPercent,
		tc.JitterMs,
		tc.LatencyMs,
		tc.Resolution,
		tc.FrameRate,
		tc.AudioQuality,
		tc.VideoQuality,
		tc.ErrorMessage,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrTestCallNotFound
	}

	return nil
}

// ListByRoom retrieves the most recent test calls for a room.
func (r *PostgresTestCallRepository) ListByRoom(ctx context.Context, roomID string, opts ListOptions) ([]*TestCall, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + testCallColumns + `
		FROM test_calls
		WHERE room_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []*TestCall
	for rows.Next() {
		var tc TestCall
		err := rows.Scan(
			&tc.ID,
			&tc.RoomID,
			&tc.CreatedAt,
			&tc.CallID,
			&tc.DurationSeconds,
			&tc.Status,
			&tc.QualityScore,
			&tc.PacketLossPercent,
			&tc.JitterMs,
			&tc.LatencyMs,
			&tc.Resolution,
			&tc.FrameRate,
			&tc.AudioQuality,
			&tc.VideoQuality,
			&tc.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		calls = append(calls, &tc)
	}

	return calls, rows.Err()
}

// DeleteByRoom removes all test calls for a room.
func (r *PostgresTestCallRepository) DeleteByRoom(ctx context.Context, roomID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM test_calls WHERE room_id = $1`, roomID)
	return err
}

// DeleteOlderThan removes test calls created before the cutoff.
func (r *PostgresTestCallRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM test_calls WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// Ensure implementations satisfy the repository interfaces.
var (
	_ HealthCheckRepository = (*PostgresHealthCheckRepository)(nil)
	_ TestCallRepository    = (*PostgresTestCallRepository)(nil)
)
