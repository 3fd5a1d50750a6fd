package config

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{name: "morning", input: "07:00", hour: 7, minute: 0},
		{name: "midnight", input: "00:00", hour: 0, minute: 0},
		{name: "end of day", input: "23:59", hour: 23, minute: 59},
		{name: "no separator", input: "0700", wantErr: true},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "12:60", wantErr: true},
		{name: "negative hour", input: "-1:30", wantErr: true},
		{name: "not numeric", input: "ab:cd", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimeOfDay(%q) expected error, got %d:%d", tt.input, hour, minute)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) unexpected error: %v", tt.input, err)
			}
			if hour != tt.hour || minute != tt.minute {
				t.Errorf("ParseTimeOfDay(%q) = %d:%d, want %d:%d", tt.input, hour, minute, tt.hour, tt.minute)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Thresholds.PacketLossPercent != 5.0 {
		t.Errorf("packet loss threshold = %v, want 5.0", cfg.Thresholds.PacketLossPercent)
	}
	if cfg.Thresholds.JitterMs != 30.0 {
		t.Errorf("jitter threshold = %v, want 30.0", cfg.Thresholds.JitterMs)
	}
	if cfg.Thresholds.LatencyMs != 150.0 {
		t.Errorf("latency threshold = %v, want 150.0", cfg.Thresholds.LatencyMs)
	}

	if cfg.Retention.HealthCheckDays != 90 || cfg.Retention.TestCallDays != 180 || cfg.Retention.AlertDays != 365 {
		t.Errorf("retention = %+v, want 90/180/365", cfg.Retention)
	}

	if cfg.Schedule.HealthCheckHour != 6 || cfg.Schedule.HealthCheckMinute != 0 {
		t.Errorf("health sweep = %02d:%02d, want 06:00", cfg.Schedule.HealthCheckHour, cfg.Schedule.HealthCheckMinute)
	}
	if cfg.Schedule.CleanupDayOfWeek != time.Sunday || cfg.Schedule.CleanupHour != 2 {
		t.Errorf("cleanup = %v %02d:%02d, want Sunday 02:00", cfg.Schedule.CleanupDayOfWeek, cfg.Schedule.CleanupHour, cfg.Schedule.CleanupMinute)
	}

	if cfg.TestCallDuration != 120*time.Second {
		t.Errorf("test call duration = %v, want 2m0s", cfg.TestCallDuration)
	}
}
