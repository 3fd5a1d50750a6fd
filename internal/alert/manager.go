package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomwatch/roomwatch/internal/room"
)

// Notifier delivers a newly raised alert to operators. A returned ticket id
// is written back onto the alert. Delivery is at-least-once attempted with
// no retry; failures must not affect alert state.
type Notifier interface {
	Notify(ctx context.Context, a *Alert, rm *room.Room) (ticketID string, err error)
}

// Manager creates alerts and triggers notification.
type Manager struct {
	repo     Repository
	notifier Notifier
	logger   zerolog.Logger
}

// NewManager creates a new alert manager. The notifier may be nil when no
// notification sink is configured.
func NewManager(repo Repository, notifier Notifier, logger zerolog.Logger) *Manager {
	return &Manager{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With().Str("component", "alerts").Logger(),
	}
}

// Raise unconditionally creates a new open alert and notifies operators.
// Repeated identical alerts are not deduplicated: every failed check
// produces its own record. Notification failure is logged and does not roll
// back the alert.
func (m *Manager) Raise(ctx context.Context, rm *room.Room, typ Type, severity Severity, title, description string) (*Alert, error) {
	a := &Alert{
		ID:          "al_" + uuid.NewString(),
		RoomID:      rm.ID,
		CreatedAt:   time.Now().UTC(),
		Type:        typ,
		Severity:    severity,
		Title:       title,
		Description: description,
		Status:      StatusOpen,
	}

	if err := m.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("alert_id", a.ID).
		Str("room_id", rm.ID).
		Str("type", string(typ)).
		Str("severity", string(severity)).
		Msg("alert created")

	if m.notifier != nil {
		ticketID, err := m.notifier.Notify(ctx, a, rm)
		if err != nil {
			m.logger.Error().Err(err).Str("alert_id", a.ID).Msg("alert notification failed")
		}
		if ticketID != "" {
			a.TicketID = &ticketID
			if err := m.repo.Update(ctx, a); err != nil {
				m.logger.Error().Err(err).Str("alert_id", a.ID).Msg("failed to record ticket id")
			}
		}
	}

	return a, nil
}

// Acknowledge marks an open alert as acknowledged.
func (m *Manager) Acknowledge(ctx context.Context, id string) (*Alert, error) {
	a, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Status = StatusAcknowledged
	if err := m.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// Resolve marks an alert as resolved by the given operator.
func (m *Manager) Resolve(ctx context.Context, id, resolvedBy string) (*Alert, error) {
	a, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a.Status = StatusResolved
	a.ResolvedAt = &now
	if resolvedBy != "" {
		a.ResolvedBy = &resolvedBy
	}
	if err := m.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// List retrieves alerts, newest first.
func (m *Manager) List(ctx context.Context, opts ListOptions) ([]*Alert, error) {
	return m.repo.List(ctx, opts)
}
