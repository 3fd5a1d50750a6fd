package alert

import (
	"context"
	"time"
)

// Repository defines the interface for alert persistence.
type Repository interface {
	// Get retrieves an alert by ID.
	Get(ctx context.Context, id string) (*Alert, error)

	// List retrieves alerts, newest first.
	List(ctx context.Context, opts ListOptions) ([]*Alert, error)

	// Create persists a new alert.
	Create(ctx context.Context, a *Alert) error

	// Update updates an existing alert.
	Update(ctx context.Context, a *Alert) error

	// DeleteByRoom removes all alerts for a room.
	DeleteByRoom(ctx context.Context, roomID string) error

	// DeleteResolvedOlderThan removes resolved alerts created before the
	// cutoff and returns the number removed. Unresolved alerts are kept
	// regardless of age.
	DeleteResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
