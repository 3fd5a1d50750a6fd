// Package room provides the monitored room entity and its persistence.
package room

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrRoomNotFound = errors.New("room not found")
)

// Status reflects the most recent health verdict for a room.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Room is a monitored video-conferencing endpoint.
//
// IPAddress selects the direct device probe; WebexRoomID selects the cloud
// probe when no address is set. A room with neither cannot be probed.
type Room struct {
	ID              string
	Name            string
	Location        *string
	IPAddress       *string
	WebexRoomID     *string
	DeviceType      *string
	Status          Status
	LastHealthCheck *time.Time

	// HealthCheckEnabled includes the room in the daily fleet sweep.
	HealthCheckEnabled bool

	// TestCallEnabled schedules a daily synthetic call at TestCallTime.
	TestCallEnabled bool

	// TestCallTime is the daily test call trigger, "HH:MM" 24h UTC.
	TestCallTime string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAddress reports whether the room is configured for the direct probe.
func (r *Room) HasAddress() bool {
	return r.IPAddress != nil && *r.IPAddress != ""
}

// HasWebexID reports whether the room is configured for the cloud probe.
func (r *Room) HasWebexID() bool {
	return r.WebexRoomID != nil && *r.WebexRoomID != ""
}

// ListOptions contains options for listing rooms.
type ListOptions struct {
	Limit int
}

// ListResult contains the result of listing rooms.
type ListResult struct {
	Items      []*Room
	NextCursor string
}
