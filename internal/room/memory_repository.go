package room

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewInMemoryRepository creates a new in-memory room repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rooms: make(map[string]*Room),
	}
}

// Get retrieves a room by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}

	cpy := *rm
	return &cpy, nil
}

// List retrieves rooms ordered by name.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := r.sortedByName(func(*Room) bool { return true })

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: rooms}
	if len(rooms) > limit {
		result.Items = rooms[:limit]
		result.NextCursor = rooms[limit-1].ID
	}

	return result, nil
}

// ListHealthCheckEnabled retrieves all rooms included in the fleet sweep.
func (r *InMemoryRepository) ListHealthCheckEnabled(_ context.Context) ([]*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedByName(func(rm *Room) bool { return rm.HealthCheckEnabled }), nil
}

// ListTestCallEnabled retrieves all rooms with scheduled test calls.
func (r *InMemoryRepository) ListTestCallEnabled(_ context.Context) ([]*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedByName(func(rm *Room) bool { return rm.TestCallEnabled }), nil
}

func (r *InMemoryRepository) sortedByName(keep func(*Room) bool) []*Room {
	var rooms []*Room
	for _, rm := range r.rooms {
		if keep(rm) {
			cpy := *rm
			rooms = append(rooms, &cpy)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms
}

// Create creates a new room.
func (r *InMemoryRepository) Create(_ context.Context, rm *Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *rm
	r.rooms[rm.ID] = &cpy
	return nil
}

// Update updates an existing room.
func (r *InMemoryRepository) Update(_ context.Context, rm *Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[rm.ID]
	if !ok {
		return ErrRoomNotFound
	}

	cpy := *rm
	// Health state is owned by UpdateHealthState.
	cpy.Status = existing.Status
	cpy.LastHealthCheck = existing.LastHealthCheck
	r.rooms[rm.ID] = &cpy
	return nil
}

// UpdateHealthState records the outcome of a health check on the room.
func (r *InMemoryRepository) UpdateHealthState(_ context.Context, id string, status Status, checkedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}

	rm.Status = status
	t := checkedAt
	rm.LastHealthCheck = &t
	rm.UpdatedAt = checkedAt
	return nil
}

// Delete deletes a room by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; !ok {
		return ErrRoomNotFound
	}

	delete(r.rooms, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
