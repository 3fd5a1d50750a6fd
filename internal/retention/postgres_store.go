package retention

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore purges expired records in a single transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a PostgreSQL-backed retention store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Purge deletes expired health checks, test calls and resolved alerts. A
// failure on any entity rolls back the whole sweep.
func (s *PostgresStore) Purge(ctx context.Context, cutoffs Cutoffs) (Counts, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var counts Counts

	tag, err := tx.Exec(ctx, `DELETE FROM health_checks WHERE created_at < $1`, cutoffs.HealthChecks)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to purge health checks: %w", err)
	}
	counts.HealthChecks = tag.RowsAffected()

	tag, err = tx.Exec(ctx, `DELETE FROM test_calls WHERE created_at < $1`, cutoffs.TestCalls)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to purge test calls: %w", err)
	}
	counts.TestCalls = tag.RowsAffected()

	tag, err = tx.Exec(ctx, `DELETE FROM alerts WHERE status = 'resolved' AND created_at < $1`, cutoffs.Alerts)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to purge alerts: %w", err)
	}
	counts.Alerts = tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return Counts{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return counts, nil
}
