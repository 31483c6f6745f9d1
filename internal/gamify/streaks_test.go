package gamify

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// TestComputeStreak verifies consecutive-day counting, the yesterday grace,
// and gap handling.
func TestComputeStreak(t *testing.T) {
	now := day("2026-08-29")

	tests := []struct {
		name string
		days []string
		want int
	}{
		{"no history", nil, 0},
		{"trained today only", []string{"2026-08-29"}, 1},
		{"three in a row ending today", []string{"2026-08-29", "2026-08-28", "2026-08-27"}, 3},
		{"ending yesterday still counts", []string{"2026-08-28", "2026-08-27"}, 2},
		{"broken two days ago", []string{"2026-08-27", "2026-08-26"}, 0},
		{"gap inside history", []string{"2026-08-29", "2026-08-28", "2026-08-25"}, 2},
		{"single old day", []string{"2026-08-01"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var days []time.Time
			for _, d := range tt.days {
				days = append(days, day(d))
			}
			if got := ComputeStreak(days, now); got != tt.want {
				t.Errorf("ComputeStreak(%v) = %d, want %d", tt.days, got, tt.want)
			}
		})
	}
}
