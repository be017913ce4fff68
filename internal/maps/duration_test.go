package maps

import (
	"testing"
	"time"
)

func TestDurationText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "1 min"},
		{20 * time.Second, "1 min"},
		{90 * time.Second, "2 mins"},
		{1080 * time.Second, "18 mins"},
		{time.Hour, "1 hour"},
		{65 * time.Minute, "1 hour 5 mins"},
		{2*time.Hour + time.Minute, "2 hours 1 min"},
		{24 * time.Hour, "1 day"},
		{51 * time.Hour, "2 days 3 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := durationText(tt.in); got != tt.want {
				t.Errorf("durationText(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
