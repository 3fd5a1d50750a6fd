package models

import "github.com/roomwatch/roomwatch/internal/room"

// Room is the API representation of a monitored room.
type Room struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Location           *string    `json:"location,omitempty"`
	IPAddress          *string    `json:"ipAddress,omitempty"`
	WebexRoomID        *string    `json:"webexRoomId,omitempty"`
	DeviceType         *string    `json:"deviceType,omitempty"`
	Status             string     `json:"status"`
	LastHealthCheck    *Timestamp `json:"lastHealthCheck,omitempty"`
	HealthCheckEnabled bool       `json:"healthCheckEnabled"`
	TestCallEnabled    bool       `json:"testCallEnabled"`
	TestCallTime       string     `json:"testCallTime"`
	CreatedAt          Timestamp  `json:"createdAt"`
	UpdatedAt          Timestamp  `json:"updatedAt"`
}

// RoomFromDomain converts a domain room to its API representation.
func RoomFromDomain(rm *room.Room) *Room {
	return &Room{
		ID:                 rm.ID,
		Name:               rm.Name,
		Location:           rm.Location,
		IPAddress:          rm.IPAddress,
		WebexRoomID:        rm.WebexRoomID,
		DeviceType:         rm.DeviceType,
		Status:             string(rm.Status),
		LastHealthCheck:    timestampPtr(rm.LastHealthCheck),
		HealthCheckEnabled: rm.HealthCheckEnabled,
		TestCallEnabled:    rm.TestCallEnabled,
		TestCallTime:       rm.TestCallTime,
		CreatedAt:          Timestamp(rm.CreatedAt),
		UpdatedAt:          Timestamp(rm.UpdatedAt),
	}
}

// RoomsFromDomain converts a slice of domain rooms.
func RoomsFromDomain(rooms []*room.Room) []*Room {
	out := make([]*Room, len(rooms))
	for i, rm := range rooms {
		out[i] = RoomFromDomain(rm)
	}
	return out
}

// RoomRequest is the create and update request body. Pointer fields
// distinguish absent from empty on update.
type RoomRequest struct {
	Name               string  `json:"name"`
	Location           *string `json:"location"`
	IPAddress          *string `json:"ipAddress"`
	WebexRoomID        *string `json:"webexRoomId"`
	DeviceType         *string `json:"deviceType"`
	HealthCheckEnabled *bool   `json:"healthCheckEnabled"`
	TestCallEnabled    *bool   `json:"testCallEnabled"`
	TestCallTime       *string `json:"testCallTime"`
}

// RoomList is the list response body.
type RoomList struct {
	Items []*Room `json:"items"`
}
