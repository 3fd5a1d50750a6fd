// Package notify delivers raised alerts to operators over email and
// ServiceNow.
package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/room"
)

// Fanout delivers an alert to every configured sink. Delivery is
// best-effort per sink; the first non-empty ticket id wins.
type Fanout struct {
	sinks  []alert.Notifier
	logger zerolog.Logger
}

var _ alert.Notifier = (*Fanout)(nil)

// NewFanout creates a fan-out notifier. Returns nil when no sinks are
// configured so callers can pass the result straight to the alert manager.
func NewFanout(logger zerolog.Logger, sinks ...alert.Notifier) *Fanout {
	if len(sinks) == 0 {
		return nil
	}
	return &Fanout{
		sinks:  sinks,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// Notify delivers to every sink and joins their errors.
func (f *Fanout) Notify(ctx context.Context, a *alert.Alert, rm *room.Room) (string, error) {
	var ticketID string
	var errs []error
	for _, sink := range f.sinks {
		id, err := sink.Notify(ctx, a, rm)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ticketID == "" {
			ticketID = id
		}
	}
	return ticketID, errors.Join(errs...)
}
