// Package quality converts raw call metrics into a 1-10 quality score and
// evaluates them against the alerting thresholds.
package quality

import "math"

// Score computes the call quality score on a 1-10 scale. Deductions are
// additive, one band per metric (the highest applicable band only), and the
// result is clamped to a minimum of 1.0 and rounded to one decimal.
func Score(packetLossPercent, jitterMs, latencyMs float64) float64 {
	score := 10.0

	switch {
	case packetLossPercent > 5:
		score -= 3
	case packetLossPercent > 2:
		score -= 1
	case packetLossPercent > 1:
		score -= 0.5
	}

	switch {
	case jitterMs > 50:
		score -= 2
	case jitterMs > 30:
		score -= 1
	case jitterMs > 20:
		score -= 0.5
	}

	switch {
	case latencyMs > 200:
		score -= 2
	case latencyMs > 150:
		score -= 1
	case latencyMs > 100:
		score -= 0.5
	}

	return math.Max(1.0, round1(score))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
