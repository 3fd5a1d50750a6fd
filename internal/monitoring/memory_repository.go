package monitoring

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryHealthCheckRepository is an in-memory implementation of
// HealthCheckRepository for testing.
type InMemoryHealthCheckRepository struct {
	mu     sync.RWMutex
	checks map[string]*HealthCheck
}

// NewInMemoryHealthCheckRepository creates a new in-memory health check
// repository.
func NewInMemoryHealthCheckRepository() *InMemoryHealthCheckRepository {
	return &InMemoryHealthCheckRepository{
		checks: make(map[string]*HealthCheck),
	}
}

// Create persists a new health check record.
func (r *InMemoryHealthCheckRepository) Create(_ context.Context, hc *HealthCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *hc
	r.checks[hc.ID] = &cpy
	return nil
}

// ListByRoom retrieves the most recent health checks for a room.
func (r *InMemoryHealthCheckRepository) ListByRoom(_ context.Context, roomID string, opts ListOptions) ([]*HealthCheck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var checks []*HealthCheck
	for _, hc := range r.checks {
		if hc.RoomID == roomID {
			cpy := *hc
			checks = append(checks, &cpy)
		}
	}
	sort.Slice(checks, func(i, j int) bool { return checks[i].CreatedAt.After(checks[j].CreatedAt) })

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(checks) > limit {
		checks = checks[:limit]
	}

	return checks, nil
}

// DeleteByRoom removes all health checks for a room.
func (r *InMemoryHealthCheckRepository) DeleteByRoom(_ context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, hc := range r.checks {
		if hc.RoomID == roomID {
			delete(r.checks, id)
		}
	}
	return nil
}

// DeleteOlderThan removes health checks created before the cutoff.
func (r *InMemoryHealthCheckRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, hc := range r.checks {
		if hc.CreatedAt.Before(cutoff) {
			delete(r.checks, id)
			n++
		}
	}
	return n, nil
}

// InMemoryTestCallRepository is an in-memory implementation of
// TestCallRepository for testing.
type InMemoryTestCallRepository struct {
	mu    sync.RWMutex
	calls map[string]*TestCall
}

// NewInMemoryTestCallRepository creates a new in-memory test call
// repository.
func NewInMemoryTestCallRepository() *InMemoryTestCallRepository {
	return &InMemoryTestCallRepository{
		calls: make(map[string]*TestCall),
	}
}

// Get retrieves a test call by ID.
func (r *InMemoryTestCallRepository) Get(_ context.Context, id string) (*TestCall, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tc, ok := r.calls[id]
	if !ok {
		return nil, ErrTestCallNotFound
	}

	cpy := *tc
	return &cpy, nil
}

// Create persists a new test call record.
func (r *InMemoryTestCallRepository) Create(_ context.Context, tc *TestCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *tc
	r.calls[tc.ID] = &cpy
	return nil
}

// Update updates an in-flight test call record.
func (r *InMemoryTestCallRepository) Update(_ context.Context, tc *TestCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.calls[tc.ID]; !ok {
		return ErrTestCallNotFound
	}

	cpy := *tc
	r.calls[tc.ID] = &cpy
	return nil
}

// ListByRoom retrieves the most recent test calls for a room.
func (r *InMemoryTestCallRepository) ListByRoom(_ context.Context, roomID string, opts ListOptions) ([]*TestCall, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var calls []*TestCall
	for _, tc := range r.calls {
		if tc.RoomID == roomID {
			cpy := *tc
			calls = append(calls, &cpy)
		}
	}
	sort.Slice(calls, func(i, j int) bool { return calls[i].CreatedAt.After(calls[j].CreatedAt) })

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(calls) > limit {
		calls = calls[:limit]
	}

	return calls, nil
}

// DeleteByRoom removes all test calls for a room.
func (r *InMemoryTestCallRepository) DeleteByRoom(_ context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, tc := range r.calls {
		if tc.RoomID == roomID {
			delete(r.calls, id)
		}
	}
	return nil
}

// DeleteOlderThan removes test calls created before the cutoff.
func (r *InMemoryTestCallRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, tc := range r.calls {
		if tc.CreatedAt.Before(cutoff) {
			delete(r.calls, id)
			n++
		}
	}
	return n, nil
}

// Ensure implementations satisfy the repository interfaces.
var (
	_ HealthCheckRepository = (*InMemoryHealthCheckRepository)(nil)
	_ TestCallRepository    = (*InMemoryTestCallRepository)(nil)
)
