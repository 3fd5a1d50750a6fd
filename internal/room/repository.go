package room

import (
	"context"
	"time"
)

// Repository defines the interface for room persistence.
type Repository interface {
	// Get retrieves a room by ID.
	Get(ctx context.Context, id string) (*Room, error)

	// List retrieves rooms ordered by name.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// ListHealthCheckEnabled retrieves all rooms included in the fleet
	// health sweep.
	ListHealthCheckEnabled(ctx context.Context) ([]*Room, error)

	// ListTestCallEnabled retrieves all rooms with scheduled test calls.
	ListTestCallEnabled(ctx context.Context) ([]*Room, error)

	// Create creates a new room.
	Create(ctx context.Context, room *Room) error

	// Update updates an existing room.
	Update(ctx context.Context, room *Room) error

	// UpdateHealthState records the outcome of a health check on the room.
	// Last writer wins; racing manual and scheduled checks are acceptable.
	UpdateHealthState(ctx context.Context, id string, status Status, checkedAt time.Time) error

	// Delete deletes a room. Callers must remove dependent records first.
	Delete(ctx context.Context, id string) error
}
