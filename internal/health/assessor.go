// Package health derives room health verdicts from probe results.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/monitoring"
	"github.com/roomwatch/roomwatch/internal/probe"
	"github.com/roomwatch/roomwatch/internal/room"
)

// errNotConfigured is recorded on rooms that have neither a device address
// nor an external room id.
const errNotConfigured = "not configured"

// defaultFailureText describes a failed check that captured no error.
const defaultFailureText = "Device offline or unreachable"

// AlertRaiser raises alerts from verdicts.
type AlertRaiser interface {
	Raise(ctx context.Context, rm *room.Room, typ alert.Type, severity alert.Severity, title, description string) (*alert.Alert, error)
}

// Assessor runs health checks: it probes a room, derives the verdict,
// persists the snapshot, updates the room and raises an alert on failure.
type Assessor struct {
	rooms    room.Repository
	checks   monitoring.HealthCheckRepository
	selector *probe.Selector
	alerts   AlertRaiser
	logger   zerolog.Logger
}

// NewAssessor creates a health assessor.
func NewAssessor(rooms room.Repository, checks monitoring.HealthCheckRepository, selector *probe.Selector, alerts AlertRaiser, logger zerolog.Logger) *Assessor {
	return &Assessor{
		rooms:    rooms,
		checks:   checks,
		selector: selector,
		alerts:   alerts,
		logger:   logger.With().Str("component", "health").Logger(),
	}
}

// Check performs one health check for the room. A HealthCheck row is
// persisted and the room's status and last-check timestamp are updated
// regardless of the outcome; a fail verdict additionally raises a
// health_check_fail alert.
func (a *Assessor) Check(ctx context.Context, roomID string) (*monitoring.HealthCheck, error) {
	rm, err := a.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	hc := &monitoring.HealthCheck{
		ID:               "hc_" + uuid.NewString(),
		RoomID:           rm.ID,
		CreatedAt:        now,
		CameraStatus:     monitoring.PeripheralUnknown,
		MicrophoneStatus: monitoring.PeripheralUnknown,
		SpeakerStatus:    monitoring.PeripheralUnknown,
	}

	roomStatus := a.assess(ctx, rm, hc)

	if err := a.checks.Create(ctx, hc); err != nil {
		a.logger.Error().Err(err).Str("room_id", rm.ID).Msg("failed to persist health check")
		return nil, fmt.Errorf("persist health check: %w", err)
	}

	if err := a.rooms.UpdateHealthState(ctx, rm.ID, roomStatus, now); err != nil {
		a.logger.Error().Err(err).Str("room_id", rm.ID).Msg("failed to update room health state")
		return nil, fmt.Errorf("update room: %w", err)
	}

	if hc.Status == monitoring.VerdictFail {
		failure := defaultFailureText
		if hc.ErrorMessage != nil && *hc.ErrorMessage != "" {
			failure = *hc.ErrorMessage
		}
		_, err := a.alerts.Raise(ctx, rm,
			alert.TypeHealthCheckFail,
			alert.SeverityHigh,
			fmt.Sprintf("Health Check Failed - %s", rm.Name),
			fmt.Sprintf("Health check failed for room %s. Error: %s", rm.Name, failure),
		)
		if err != nil {
			a.logger.Error().Err(err).Str("room_id", rm.ID).Msg("failed to raise health alert")
		}
	}

	a.logger.Info().
		Str("room_id", rm.ID).
		Str("verdict", string(hc.Status)).
		Str("room_status", string(roomStatus)).
		Msg("health check completed")

	return hc, nil
}

// assess fills the health check from the selected probe and returns the new
// room status.
func (a *Assessor) assess(ctx context.Context, rm *room.Room, hc *monitoring.HealthCheck) room.Status {
	p := a.selector.ForRoom(rm)

	switch p.Kind {
	case probe.KindDirect:
		return a.assessDirect(ctx, p, hc)
	case probe.KindCloud:
		return a.assessCloud(ctx, p, hc)
	default:
		hc.Status = monitoring.VerdictFail
		msg := errNotConfigured
		hc.ErrorMessage = &msg
		return room.StatusError
	}
}

func (a *Assessor) assessDirect(ctx context.Context, p *probe.Probe, hc *monitoring.HealthCheck) room.Status {
	status, err := p.Direct(ctx)
	if err != nil {
		hc.Status = monitoring.VerdictFail
		msg := err.Error()
		hc.ErrorMessage = &msg
		return room.StatusError
	}

	hc.DeviceOnline = status.Online
	hc.CameraStatus = monitoring.PeripheralStatus(status.CameraStatus)
	hc.MicrophoneStatus = monitoring.PeripheralStatus(status.MicrophoneStatus)
	hc.SpeakerStatus = monitoring.PeripheralStatus(status.SpeakerStatus)
	if status.SoftwareVersion != "" {
		v := status.SoftwareVersion
		hc.SoftwareVersion = &v
	}
	hc.UptimeHours = status.UptimeHours
	hc.TemperatureC = status.TemperatureC

	if !status.Online {
		hc.Status = monitoring.VerdictFail
		return room.StatusOffline
	}

	if hc.CameraStatus == monitoring.PeripheralConnected &&
		hc.MicrophoneStatus == monitoring.PeripheralConnected &&
		hc.SpeakerStatus == monitoring.PeripheralConnected {
		hc.Status = monitoring.VerdictPass
		return room.StatusOnline
	}

	hc.Status = monitoring.VerdictWarning
	return room.StatusWarning
}

func (a *Assessor) assessCloud(ctx context.Context, p *probe.Probe, hc *monitoring.HealthCheck) room.Status {
	status, err := p.Cloud(ctx)
	if err != nil {
		hc.Status = monitoring.VerdictFail
		msg := err.Error()
		hc.ErrorMessage = &msg
		return room.StatusError
	}

	hc.DeviceOnline = status.Connected()
	if status.Software != "" {
		v := status.Software
		hc.SoftwareVersion = &v
	}

	if status.Connected() {
		hc.Status = monitoring.VerdictPass
		return room.StatusOnline
	}

	hc.Status = monitoring.VerdictFail
	return room.StatusOffline
}
