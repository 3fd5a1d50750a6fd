package quality

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		loss    float64
		jitter  float64
		latency float64
		want    float64
	}{
		{name: "perfect call", loss: 0, jitter: 0, latency: 0, want: 10.0},
		{name: "all at band edges", loss: 1, jitter: 20, latency: 100, want: 10.0},
		{name: "just over lowest bands", loss: 1.1, jitter: 20.1, latency: 100.1, want: 8.5},
		{name: "heavy loss only", loss: 6, jitter: 10, latency: 50, want: 7.0},
		{name: "moderate everything", loss: 3, jitter: 35, latency: 160, want: 7.0},
		{name: "maximum deductions", loss: 50, jitter: 500, latency: 5000, want: 3.0},
		{name: "single decimal rounding", loss: 1.5, jitter: 0, latency: 0, want: 9.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.loss, tt.jitter, tt.latency)
			if got != tt.want {
				t.Errorf("Score(%v, %v, %v) = %v, want %v", tt.loss, tt.jitter, tt.latency, got, tt.want)
			}
		})
	}
}

func TestScore_NeverBelowFloor(t *testing.T) {
	// Max total deduction is 7.0, leaving 3.0; the clamp only matters if
	// bands are retuned, but the floor is part of the contract.
	if got := Score(100, 1000, 10000); got < 1.0 {
		t.Errorf("Score = %v, want >= 1.0", got)
	}
}

func TestScore_MonotonicInLoss(t *testing.T) {
	prev := Score(0, 25, 120)
	for _, loss := range []float64{0.5, 1.5, 2.5, 5.5, 9} {
		got := Score(loss, 25, 120)
		if got > prev {
			t.Errorf("score increased from %v to %v as loss rose to %v", prev, got, loss)
		}
		prev = got
	}
}
