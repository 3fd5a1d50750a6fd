package quality

import (
	"testing"

	"github.com/roomwatch/roomwatch/internal/config"
)

func TestAssessor_Evaluate(t *testing.T) {
	a := NewAssessor(config.Thresholds{PacketLossPercent: 5.0, JitterMs: 30.0, LatencyMs: 150.0})

	tests := []struct {
		name    string
		metrics CallMetrics
		breach  bool
	}{
		{name: "all within", metrics: CallMetrics{PacketLossPercent: 1, JitterMs: 10, LatencyMs: 50}},
		{name: "at thresholds", metrics: CallMetrics{PacketLossPercent: 5, JitterMs: 30, LatencyMs: 150}},
		{name: "loss over", metrics: CallMetrics{PacketLossPercent: 5.1, JitterMs: 10, LatencyMs: 50}, breach: true},
		{name: "jitter over", metrics: CallMetrics{PacketLossPercent: 1, JitterMs: 31, LatencyMs: 50}, breach: true},
		{name: "latency over", metrics: CallMetrics{PacketLossPercent: 1, JitterMs: 10, LatencyMs: 151}, breach: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Evaluate(tt.metrics)
			if (got != nil) != tt.breach {
				t.Errorf("Evaluate(%+v) breach = %v, want %v", tt.metrics, got != nil, tt.breach)
			}
		})
	}
}

func TestAssessor_Evaluate_Description(t *testing.T) {
	a := NewAssessor(config.Thresholds{PacketLossPercent: 5.0, JitterMs: 30.0, LatencyMs: 150.0})

	breach := a.Evaluate(CallMetrics{PacketLossPercent: 3, JitterMs: 30, LatencyMs: 210})
	if breach == nil {
		t.Fatal("expected a breach")
	}

	want := "Call quality below threshold: Packet Loss: 3%, Jitter: 30ms, Latency: 210ms"
	if breach.Description != want {
		t.Errorf("description = %q, want %q", breach.Description, want)
	}
}
