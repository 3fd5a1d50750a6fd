package room

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const roomColumns = `id, name, location, ip_address, webex_room_id, device_type,
	status, last_health_check, health_check_enabled, test_call_enabled,
	test_call_time, created_at, updated_at`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL room repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a room by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	var rm Room
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rm.ID,
		&rm.Name,
		&rm.Location,
		&rm.IPAddress,
		&rm.WebexRoomID,
		&rm.DeviceType,
		&rm.Status,
		&rm.LastHealthCheck,
		&rm.HealthCheckEnabled,
		&rm.TestCallEnabled,
		&rm.TestCallTime,
		&rm.CreatedAt,
		&rm.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	return &rm, nil
}

// List retrieves rooms ordered by name.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	fetchLimit := limit + 1

	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY name LIMIT $1`

	rows, err := r.pool.Query(ctx, query, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms, err := scanRooms(rows)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: rooms}
	if len(rooms) > limit {
		result.Items = rooms[:limit]
		result.NextCursor = rooms[limit-1].ID
	}

	return result, nil
}

// ListHealthCheckEnabled retrieves all rooms included in the fleet sweep.
func (r *PostgresRepository) ListHealthCheckEnabled(ctx context.Context) ([]*Room, error) {
	return r.listWhere(ctx, `health_check_enabled`)
}

// ListTestCallEnabled retrieves all rooms with scheduled test calls.
func (r *PostgresRepository) ListTestCallEnabled(ctx context.Context) ([]*Room, error) {
	return r.listWhere(ctx, `test_call_enabled`)
}

func (r *PostgresRepository) listWhere(ctx context.Context, flagColumn string) ([]*Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE ` + flagColumn + ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRooms(rows)
}

func scanRooms(rows pgx.Rows) ([]*Room, error) {
	var rooms []*Room
	for rows.Next() {
		var rm Room
		err := rows.Scan(
			&rm.ID,
			&rm.Name,
			&rm.Location,
			&rm.IPAddress,
			&rm.WebexRoomID,
			&rm.DeviceType,
			&rm.Status,
			&rm.LastHealthCheck,
			&rm.HealthCheckEnabled,
			&rm.TestCallEnabled,
			&rm.TestCallTime,
			&rm.CreatedAt,
			&rm.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, &rm)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}

// Create creates a new room.
func (r *PostgresRepository) Create(ctx context.Context, rm *Room) error {
	query := `
		INSERT INTO rooms (id, name, location, ip_address, webex_room_id, device_type,
			status, last_health_check, health_check_enabled, test_call_enabled,
			test_call_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		rm.ID,
		rm.Name,
		rm.Location,
		rm.IPAddress,
		rm.WebexRoomID,
		rm.DeviceType,
		rm.Status,
		rm.LastHealthCheck,
		rm.HealthCheckEnabled,
		rm.TestCallEnabled,
		rm.TestCallTime,
		rm.CreatedAt,
		rm.UpdatedAt,
	)
	return err
}

// Update updates an existing room.
func (r *PostgresRepository) Update(ctx context.Context, rm *Room) error {
	query := `
		UPDATE rooms SET
			name = $2,
			location = $3,
			ip_address = $4,
			webex_room_id = $5,
			device_type = $6,
			health_check_enabled = $7,
			test_call_enabled = $8,
			test_call_time = $9,
			updated_at = $10
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		rm.ID,
		rm.Name,
		rm.Location,
		rm.IPAddress,
		rm.WebexRoomID,
		rm.DeviceType,
		rm.HealthCheckEnabled,
		rm.TestCallEnabled,
		rm.TestCallTime,
		rm.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrRoomNotFound
	}

	return nil
}

// UpdateHealthState records the outcome of a health check on the room.
func (r *PostgresRepository) UpdateHealthState(ctx context.Context, id string, status Status, checkedAt time.Time) error {
	query := `
		UPDATE rooms SET status = $2, last_health_check = $3, updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, status, checkedAt)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrRoomNotFound
	}

	return nil
}

// Delete deletes a room.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrRoomNotFound
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
