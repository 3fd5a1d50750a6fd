package quality

import "github.com/roomwatch/roomwatch/internal/webex"

// CallMetrics is the per-call aggregate over all participants.
type CallMetrics struct {
	PacketLossPercent float64
	JitterMs          float64
	LatencyMs         float64
	Score             float64
}

// Aggregate folds per-participant metrics into one per-call figure: the
// mean of the audio metrics across participants, with a participant's video
// figure added in whenever it exceeds the running audio total divided by
// the participant count.
//
// The video blending is asymmetric and order-dependent. It reproduces the
// long-standing production behavior exactly; do not "fix" it without
// recalibrating the alert thresholds against historical data.
func Aggregate(participants []webex.ParticipantMetrics) CallMetrics {
	n := float64(len(participants))
	if n == 0 {
		return CallMetrics{}
	}

	var totalLoss, totalJitter, totalLatency float64
	for _, p := range participants {
		totalLoss += p.PacketLossPercent
		totalJitter += p.JitterMs
		totalLatency += p.LatencyMs

		if p.VideoPacketLossPercent > totalLoss/n {
			totalLoss += p.VideoPacketLossPercent
		}
		if p.VideoJitterMs > totalJitter/n {
			totalJitter += p.VideoJitterMs
		}
		if p.VideoLatencyMs > totalLatency/n {
			totalLatency += p.VideoLatencyMs
		}
	}

	avgLoss := totalLoss / n
	avgJitter := totalJitter / n
	avgLatency := totalLatency / n

	return CallMetrics{
		PacketLossPercent: round2(avgLoss),
		JitterMs:          round2(avgJitter),
		LatencyMs:         round2(avgLatency),
		Score:             Score(avgLoss, avgJitter, avgLatency),
	}
}
