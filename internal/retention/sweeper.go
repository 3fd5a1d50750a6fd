// Package retention purges monitoring history past its retention window.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomwatch/roomwatch/internal/config"
)

// Cutoffs are the per-entity deletion boundaries. Records strictly older
// than their cutoff are purged; alerts additionally must be resolved.
type Cutoffs struct {
	HealthChecks time.Time
	TestCalls    time.Time
	Alerts       time.Time
}

// Counts reports how many rows each entity lost in a sweep.
type Counts struct {
	HealthChecks int64
	TestCalls    int64
	Alerts       int64
}

// Store deletes expired records. Purge is atomic: either all three entity
// purges apply or none do.
type Store interface {
	Purge(ctx context.Context, cutoffs Cutoffs) (Counts, error)
}

// Sweeper runs the weekly retention sweep.
type Sweeper struct {
	store     Store
	retention config.Retention
	logger    zerolog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewSweeper creates a retention sweeper.
func NewSweeper(store Store, retention config.Retention, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		store:     store,
		retention: retention,
		logger:    logger.With().Str("component", "retention").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Sweep deletes all records past their retention window. Unresolved alerts
// are never deleted regardless of age.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := s.now()
	cutoffs := Cutoffs{
		HealthChecks: now.AddDate(0, 0, -s.retention.HealthCheckDays),
		TestCalls:    now.AddDate(0, 0, -s.retention.TestCallDays),
		Alerts:       now.AddDate(0, 0, -s.retention.AlertDays),
	}

	counts, err := s.store.Purge(ctx, cutoffs)
	if err != nil {
		s.logger.Error().Err(err).Msg("retention sweep failed, no records deleted")
		return fmt.Errorf("retention sweep: %w", err)
	}

	s.logger.Info().
		Int64("health_checks", counts.HealthChecks).
		Int64("test_calls", counts.TestCalls).
		Int64("alerts", counts.Alerts).
		Msg("retention sweep completed")
	return nil
}
