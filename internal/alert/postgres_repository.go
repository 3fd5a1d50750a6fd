package alert

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const alertColumns = `id, room_id, created_at, alert_type, severity, title,
	description, status, ticket_id, resolved_at, resolved_by`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL alert repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves an alert by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`

	var a Alert
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.RoomID,
		&a.CreatedAt,
		&a.Type,
		&a.Severity,
		&a.Title,
		&a.Description,
		&a.Status,
		&a.TicketID,
		&a.ResolvedAt,
		&a.ResolvedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}

	return &a, nil
}

// List retrieves alerts, newest first.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*Alert, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR room_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, string(opts.Status), opts.RoomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		var a Alert
		err := rows.Scan(
			&a.ID,
			&a.RoomID,
			&a.CreatedAt,
			&a.Type,
			&a.Severity,
			&a.Title,
			&a.Description,
			&a.Status,
			&a.TicketID,
			&a.ResolvedAt,
			&a.ResolvedBy,
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, &a)
	}

	return alerts, rows.Err()
}

// Create persists a new alert.
func (r *PostgresRepository) Create(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.RoomID,
		a.CreatedAt,
		a.Type,
		a.Severity,
		a.Title,
		a.Description,
		a.Status,
		a.TicketID,
		a.ResolvedAt,
		a.ResolvedBy,
	)
	return err
}

// Update updates an existing alert.
func (r *PostgresRepository) Update(ctx context.Context, a *Alert) error {
	query := `
		UPDATE alerts SET
			status = $2,
			ticket_id = $3,
			resolved_at = $4,
			resolved_by = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, a.ID, a.Status, a.TicketID, a.ResolvedAt, a.ResolvedBy)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrAlertNotFound
	}

	return nil
}

// DeleteByRoom removes all alerts for a room.
func (r *PostgresRepository) DeleteByRoom(ctx context.Context, roomID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM alerts WHERE room_id = $1`, roomID)
	return err
}

// DeleteResolvedOlderThan removes resolved alerts created before the cutoff.
func (r *PostgresRepository) DeleteResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM alerts WHERE created_at < $1 AND status = $2`, cutoff, StatusResolved)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
