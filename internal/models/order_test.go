package models

import (
	"testing"
	"time"
)

func TestReadyAt(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := Order{CreatedAt: created}
	if got, want := o.ReadyAt(), created.Add(30*time.Minute); !got.Equal(want) {
		t.Errorf("ReadyAt = %v, want %v", got, want)
	}
}

func TestRemainingPrepClampsAtZero(t *testing.T) {
	readyAt := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	if got := RemainingPrep(readyAt.Add(-10*time.Minute), readyAt); got != 10*time.Minute {
		t.Errorf("RemainingPrep = %v, want 10m", got)
	}
	if got := RemainingPrep(readyAt.Add(5*time.Minute), readyAt); got != 0 {
		t.Errorf("RemainingPrep past readyAt = %v, want 0", got)
	}
}

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Minute, "00:00"},
		{9*time.Minute + 5*time.Second, "09:05"},
		{29*time.Minute + 59*time.Second, "29:59"},
	}
	for _, tc := range cases {
		if got := FormatCountdown(tc.d); got != tc.want {
			t.Errorf("FormatCountdown(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestRoundPrice(t *testing.T) {
	if got := RoundPrice(249.99); got != 250 {
		t.Errorf("RoundPrice(249.99) = %v, want 250", got)
	}
	if got := RoundPrice(249.49); got != 249 {
		t.Errorf("RoundPrice(249.49) = %v, want 249", got)
	}
}
