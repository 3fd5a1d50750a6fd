package models

import "github.com/roomwatch/roomwatch/internal/monitoring"

// HealthCheck is the API representation of a health check snapshot.
type HealthCheck struct {
	ID               string    `json:"id"`
	RoomID           string    `json:"roomId"`
	CreatedAt        Timestamp `json:"createdAt"`
	Status           string    `json:"status"`
	DeviceOnline     bool      `json:"deviceOnline"`
	CameraStatus     string    `json:"cameraStatus"`
	MicrophoneStatus string    `json:"microphoneStatus"`
	SpeakerStatus    string    `json:"speakerStatus"`
	SoftwareVersion  *string   `json:"softwareVersion,omitempty"`
	UptimeHours      *int      `json:"uptimeHours,omitempty"`
	TemperatureC     *float64  `json:"temperatureC,omitempty"`
	ErrorMessage     *string   `json:"errorMessage,omitempty"`
}

// HealthCheckFromDomain converts a domain health check.
func HealthCheckFromDomain(hc *monitoring.HealthCheck) *HealthCheck {
	return &HealthCheck{
		ID:               hc.ID,
		RoomID:           hc.RoomID,
		CreatedAt:        Timestamp(hc.CreatedAt),
		Status:           string(hc.Status),
		DeviceOnline:     hc.DeviceOnline,
		CameraStatus:     string(hc.CameraStatus),
		MicrophoneStatus: string(hc.MicrophoneStatus),
		SpeakerStatus:    string(hc.SpeakerStatus),
		SoftwareVersion:  hc.SoftwareVersion,
		UptimeHours:      hc.UptimeHours,
		TemperatureC:     hc.TemperatureC,
		ErrorMessage:     hc.ErrorMessage,
	}
}

// HealthCheckList is the list response body.
type HealthCheckList struct {
	Items []*HealthCheck `json:"items"`
}

// HealthChecksFromDomain converts a slice of domain health checks.
func HealthChecksFromDomain(checks []*monitoring.HealthCheck) []*HealthCheck {
	out := make([]*HealthCheck, len(checks))
	for i, hc := range checks {
		out[i] = HealthCheckFromDomain(hc)
	}
	return out
}

// TestCall is the API representation of a test call record.
type TestCall struct {
	ID                string    `json:"id"`
	RoomID            string    `json:"roomId"`
	CreatedAt         Timestamp `json:"createdAt"`
	CallID            *string   `json:"callId,omitempty"`
	DurationSeconds   *int      `json:"durationSeconds,omitempty"`
	Status            string    `json:"status"`
	QualityScore      *float64  `json:"qualityScore,omitempty"`
	PacketLossPercent *float64  `json:"packetLossPercent,omitempty"`
	JitterMs          *float64  `json:"jitterMs,omitempty"`
	LatencyMs         *float64  `json:"latencyMs,omitempty"`
	Resolution        *string   `json:"resolution,omitempty"`
	FrameRate         *int      `json:"frameRate,omitempty"`
	AudioQuality      *string   `json:"audioQuality,omitempty"`
	VideoQuality      *string   `json:"videoQuality,omitempty"`
	ErrorMessage      *string   `json:"errorMessage,omitempty"`
}

// TestCallFromDomain converts a domain test call.
func TestCallFromDomain(tc *monitoring.TestCall) *TestCall {
	return &TestCall{
		ID:                tc.ID,
		RoomID:            tc.RoomID,
		CreatedAt:         Timestamp(tc.CreatedAt),
		CallID:            tc.CallID,
		DurationSeconds:   tc.DurationSeconds,
		Status:            string(tc.Status),
		QualityScore:      tc.QualityScore,
		PacketLossPercent: tc.PacketLossPercent,
		JitterMs:          tc.JitterMs,
		LatencyMs:         tc.LatencyMs,
		Resolution:        tc.Resolution,
		FrameRate:         tc.FrameRate,
		AudioQuality:      tc.AudioQuality,
		VideoQuality:      tc.VideoQuality,
		ErrorMessage:      tc.ErrorMessage,
	}
}

// TestCallList is the list response body.
type TestCallList struct {
	Items []*TestCall `json:"items"`
}

// TestCallsFromDomain converts a slice of domain test calls.
func TestCallsFromDomain(calls []*monitoring.TestCall) []*TestCall {
	out := make([]*TestCall, len(calls))
	for i, tc := range calls {
		out[i] = TestCallFromDomain(tc)
	}
	return out
}
