package domain

import (
	"testing"
	"time"
)

func TestInterval_Remaining(t *testing.T) {
	start := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	interval := NewInterval(start, 10*time.Minute)

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"at start", start, 10 * time.Minute},
		{"halfway", start.Add(5 * time.Minute), 5 * time.Minute},
		{"at end", start.Add(10 * time.Minute), 0},
		{"overdue", start.Add(12 * time.Minute), -2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interval.Remaining(tt.now); got != tt.want {
				t.Errorf("Remaining(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestInterval_Overdue(t *testing.T) {
	start := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	interval := NewInterval(start, 10*time.Minute)

	if interval.Overdue(start.Add(9 * time.Minute)) {
		t.Error("interval should not be overdue before the planned length elapses")
	}
	if !interval.Overdue(start.Add(11 * time.Minute)) {
		t.Error("interval should be overdue after the planned length elapses")
	}
}

func TestInterval_Extend_Additive(t *testing.T) {
	start := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	interval := NewInterval(start, 10*time.Minute)

	for i := 1; i <= 3; i++ {
		interval.Extend()
		want := time.Duration(i+1) * 10 * time.Minute
		if interval.Planned != want {
			t.Errorf("after %d extensions Planned = %v, want %v", i, interval.Planned, want)
		}
		if interval.Original != 10*time.Minute {
			t.Errorf("Extend() must not change Original, got %v", interval.Original)
		}
		if !interval.StartedAt.Equal(start) {
			t.Errorf("Extend() must not change StartedAt, got %v", interval.StartedAt)
		}
	}
}

func TestInterval_Progress_Clamped(t *testing.T) {
	start := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	interval := NewInterval(start, 10*time.Minute)

	if got := interval.Progress(start.Add(5 * time.Minute)); got != 0.5 {
		t.Errorf("Progress at halfway = %v, want 0.5", got)
	}
	if got := interval.Progress(start.Add(30 * time.Minute)); got != 1 {
		t.Errorf("Progress past the end = %v, want 1", got)
	}
	if got := interval.Progress(start.Add(-time.Minute)); got != 0 {
		t.Errorf("Progress before the start = %v, want 0", got)
	}
}

func TestInterval_FormatRemaining(t *testing.T) {
	start := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	interval := NewInterval(start, 10*time.Minute)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"full", start, "10:00"},
		{"partial", start.Add(8*time.Minute + 30*time.Second), "1:30"},
		{"zero", start.Add(10 * time.Minute), "0:00"},
		{"overdue", start.Add(12*time.Minute + 5*time.Second), "-2:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interval.FormatRemaining(tt.now); got != tt.want {
				t.Errorf("FormatRemaining(%v) = %q, want %q", tt.now, got, tt.want)
			}
		})
	}
}
