package format

import (
	"testing"
	"time"
)

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{90 * time.Minute, "1 hour ago"},
		{30 * time.Hour, "1 day ago"},
		{3 * 24 * time.Hour, "3 days ago"},
		{10 * 24 * time.Hour, "Apr 30, 2024"},
	}

	for _, tt := range tests {
		if got := FormatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("FormatRelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}
