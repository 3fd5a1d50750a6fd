package monitoring

import (
	"context"
	"time"
)

// HealthCheckRepository defines the interface for health check persistence.
// Health checks are append-only; there is no update operation.
type HealthCheckRepository interface {
	// Create persists a new health check record.
	Create(ctx context.Context, hc *HealthCheck) error

	// ListByRoom retrieves the most recent health checks for a room.
	ListByRoom(ctx context.Context, roomID string, opts ListOptions) ([]*HealthCheck, error)

	// DeleteByRoom removes all health checks for a room.
	DeleteByRoom(ctx context.Context, roomID string) error

	// DeleteOlderThan removes health checks created before the cutoff and
	// returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// TestCallRepository defines the interface for test call persistence.
type TestCallRepository interface {
	// Get retrieves a test call by ID.
	Get(ctx context.Context, id string) (*TestCall, error)

	// Create persists a new test call record.
	Create(ctx context.Context, tc *TestCall) error

	// Update updates an in-flight test call record.
	Update(ctx context.Context, tc *TestCall) error

	// ListByRoom retrieves the most recent test calls for a room.
	ListByRoom(ctx context.Context, roomID string, opts ListOptions) ([]*TestCall, error)

	// DeleteByRoom removes all test calls for a room.
	DeleteByRoom(ctx context.Context, roomID string) error

	// DeleteOlderThan removes test calls created before the cutoff and
	// returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
