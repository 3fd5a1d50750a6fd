package quality

import (
	"fmt"

	"github.com/roomwatch/roomwatch/internal/config"
)

// Breach describes a threshold violation on a completed call. The
// description covers all three measured values regardless of which one
// breached.
type Breach struct {
	Description string
}

// Assessor evaluates aggregated call metrics against the configured
// thresholds.
type Assessor struct {
	thresholds config.Thresholds
}

// NewAssessor creates a quality assessor with the given thresholds.
func NewAssessor(thresholds config.Thresholds) *Assessor {
	return &Assessor{thresholds: thresholds}
}

// Evaluate returns a Breach when any of packet loss, jitter or latency
// exceeds its threshold, and nil otherwise.
func (a *Assessor) Evaluate(m CallMetrics) *Breach {
	if m.PacketLossPercent <= a.thresholds.PacketLossPercent &&
		m.JitterMs <= a.thresholds.JitterMs &&
		m.LatencyMs <= a.thresholds.LatencyMs {
		return nil
	}

	return &Breach{
		Description: fmt.Sprintf(
			"Call quality below threshold: Packet Loss: %g%%, Jitter: %gms, Latency: %gms",
			m.PacketLossPercent, m.JitterMs, m.LatencyMs,
		),
	}
}
