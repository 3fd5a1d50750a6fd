package retention

import (
	"context"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/monitoring"
)

// MemoryStore purges through the in-memory repositories. Unlike the
// PostgreSQL store it is not transactional; it exists for tests and local
// runs without a database.
type MemoryStore struct {
	checks monitoring.HealthCheckRepository
	calls  monitoring.TestCallRepository
	alerts alert.Repository
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a repository-backed retention store.
func NewMemoryStore(checks monitoring.HealthCheckRepository, calls monitoring.TestCallRepository, alerts alert.Repository) *MemoryStore {
	return &MemoryStore{checks: checks, calls: calls, alerts: alerts}
}

// Purge deletes expired records entity by entity.
func (s *MemoryStore) Purge(ctx context.Context, cutoffs Cutoffs) (Counts, error) {
	var counts Counts
	var err error

	if counts.HealthChecks, err = s.checks.DeleteOlderThan(ctx, cutoffs.HealthChecks); err != nil {
		return Counts{}, err
	}
	if counts.TestCalls, err = s.calls.DeleteOlderThan(ctx, cutoffs.TestCalls); err != nil {
		return Counts{}, err
	}
	if counts.Alerts, err = s.alerts.DeleteResolvedOlderThan(ctx, cutoffs.Alerts); err != nil {
		return Counts{}, err
	}
	return counts, nil
}
