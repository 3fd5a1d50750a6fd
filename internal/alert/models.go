// Package alert provides alert records and the manager that raises them.
package alert

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrAlertNotFound = errors.New("alert not found")
)

// Type classifies what triggered an alert.
type Type string

const (
	TypeHealthCheckFail Type = "health_check_fail"
	TypePoorCallQuality Type = "poor_call_quality"
	TypeDeviceOffline   Type = "device_offline"
)

// Severity ranks how urgent an alert is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Status is the alert lifecycle state. Alerts are created open and move to
// acknowledged or resolved only through operator action.
type Status string

const (
	StatusOpen         Status = "open"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
)

// Alert is raised when a verdict crosses a threshold.
type Alert struct {
	ID          string
	RoomID      string
	CreatedAt   time.Time
	Type        Type
	Severity    Severity
	Title       string
	Description string
	Status      Status

	// TicketID is the external ticket reference written back by the
	// notification sink, when one is opened.
	TicketID   *string
	ResolvedAt *time.Time
	ResolvedBy *string
}

// ListOptions contains options for listing alerts.
type ListOptions struct {
	Limit  int
	Status Status // empty matches all statuses
	RoomID string // empty matches all rooms
}
