package alert

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing.
type InMemoryRepository struct {
	mu     sync.RWMutex
	alerts map[string]*Alert
}

// NewInMemoryRepository creates a new in-memory alert repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		alerts: make(map[string]*Alert),
	}
}

// Get retrieves an alert by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}

	cpy := *a
	return &cpy, nil
}

// List retrieves alerts, newest first.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) ([]*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var alerts []*Alert
	for _, a := range r.alerts {
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		if opts.RoomID != "" && a.RoomID != opts.RoomID {
			continue
		}
		cpy := *a
		alerts = append(alerts, &cpy)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].CreatedAt.After(alerts[j].CreatedAt) })

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(alerts) > limit {
		alerts = alerts[:limit]
	}

	return alerts, nil
}

// Create persists a new alert.
func (r *InMemoryRepository) Create(_ context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *a
	r.alerts[a.ID] = &cpy
	return nil
}

// Update updates an existing alert.
func (r *InMemoryRepository) Update(_ context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[a.ID]; !ok {
		return ErrAlertNotFound
	}

	cpy := *a
	r.alerts[a.ID] = &cpy
	return nil
}

// DeleteByRoom removes all alerts for a room.
func (r *InMemoryRepository) DeleteByRoom(_ context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, a := range r.alerts {
		if a.RoomID == roomID {
			delete(r.alerts, id)
		}
	}
	return nil
}

// DeleteResolvedOlderThan removes resolved alerts created before the cutoff.
func (r *InMemoryRepository) DeleteResolvedOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, a := range r.alerts {
		if a.Status == StatusResolved && a.CreatedAt.Before(cutoff) {
			delete(r.alerts, id)
			n++
		}
	}
	return n, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
