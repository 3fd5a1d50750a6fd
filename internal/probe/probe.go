// Package probe selects how a room is probed: directly against the device,
// through the cloud API, or not at all when the room is unconfigured.
package probe

import (
	"context"

	"github.com/roomwatch/roomwatch/internal/room"
	"github.com/roomwatch/roomwatch/internal/roomos"
	"github.com/roomwatch/roomwatch/internal/webex"
)

// Kind is the probe variant chosen for a room. The set is closed: a room
// with a device address gets the direct probe, a room with only a cloud id
// gets the cloud probe, anything else cannot be probed.
type Kind int

const (
	KindUnconfigured Kind = iota
	KindDirect
	KindCloud
)

// DirectProber reads live status from a room device.
type DirectProber interface {
	GetStatus(ctx context.Context) (*roomos.DeviceStatus, error)
}

// CloudProber reads device status from the cloud API.
type CloudProber interface {
	GetDeviceStatus(ctx context.Context, deviceID string) (*webex.DeviceStatus, error)
}

// Probe is the variant bound to one room for one assessment.
type Probe struct {
	Kind Kind

	direct  DirectProber
	cloud   CloudProber
	cloudID string
}

// Direct executes the direct device probe.
func (p *Probe) Direct(ctx context.Context) (*roomos.DeviceStatus, error) {
	return p.direct.GetStatus(ctx)
}

// Cloud executes the cloud probe.
func (p *Probe) Cloud(ctx context.Context) (*webex.DeviceStatus, error) {
	return p.cloud.GetDeviceStatus(ctx, p.cloudID)
}

// Selector binds rooms to probe variants based on their configuration.
type Selector struct {
	newDirect func(address string) DirectProber
	cloud     CloudProber
}

// NewSelector creates a probe selector. newDirect constructs a device
// client for an address; cloud may be nil when no cloud API is configured.
func NewSelector(newDirect func(address string) DirectProber, cloud CloudProber) *Selector {
	return &Selector{newDirect: newDirect, cloud: cloud}
}

// ForRoom selects the probe variant for a room. The direct probe wins when
// an address is configured; the cloud probe applies when only an external
// room id is present.
func (s *Selector) ForRoom(rm *room.Room) *Probe {
	if rm.HasAddress() {
		return &Probe{
			Kind:   KindDirect,
			direct: s.newDirect(*rm.IPAddress),
		}
	}

	if rm.HasWebexID() && s.cloud != nil {
		return &Probe{
			Kind:    KindCloud,
			cloud:   s.cloud,
			cloudID: *rm.WebexRoomID,
		}
	}

	return &Probe{Kind: KindUnconfigured}
}
