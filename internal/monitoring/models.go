// Package monitoring provides the health check and test call records
// produced by the assessment engine.
package monitoring

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrHealthCheckNotFound = errors.New("health check not found")
	ErrTestCallNotFound    = errors.New("test call not found")
)

// Verdict is the categorical outcome of a health check.
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictWarning Verdict = "warning"
	VerdictFail    Verdict = "fail"
)

// PeripheralStatus describes one attached peripheral.
type PeripheralStatus string

const (
	PeripheralConnected    PeripheralStatus = "connected"
	PeripheralDisconnected PeripheralStatus = "disconnected"
	PeripheralUnknown      PeripheralStatus = "unknown"
)

// HealthCheck is an immutable snapshot of one probe execution. It is never
// mutated after creation and is removed only by the retention sweep.
type HealthCheck struct {
	ID               string
	RoomID           string
	CreatedAt        time.Time
	Status           Verdict
	DeviceOnline     bool
	CameraStatus     PeripheralStatus
	MicrophoneStatus PeripheralStatus
	SpeakerStatus    PeripheralStatus
	SoftwareVersion  *string
	UptimeHours      *int
	TemperatureC     *float64
	ErrorMessage     *string
}

// CallStatus is the test call lifecycle state.
type CallStatus string

const (
	CallScheduled CallStatus = "scheduled"
	CallStarted   CallStatus = "started"
	CallCompleted CallStatus = "completed"
	CallFailed    CallStatus = "failed"
)

// TestCall represents one synthetic call lifecycle instance. Fields are
// accumulated across the lifecycle; the record is immutable once the call
// reaches a terminal state.
type TestCall struct {
	ID                string
	RoomID            string
	CreatedAt         time.Time
	CallID            *string
	DurationSeconds   *int
	Status            CallStatus
	QualityScore      *float64
	PacketLossPercent *float64
	JitterMs          *float64
	LatencyMs         *float64
	Resolution        *string
	FrameRate         *int
	AudioQuality      *string
	VideoQuality      *string
	ErrorMessage      *string
}

// ListOptions contains options for listing monitoring records.
type ListOptions struct {
	Limit int
}
