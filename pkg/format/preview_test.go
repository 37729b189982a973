package format

import (
	"strings"
	"testing"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"short", "hello", 40, "hello"},
		{"newlines", "a\nb\r\nc\rd", 40, "a b c d"},
		{"truncated", strings.Repeat("x", 50), 40, strings.Repeat("x", 40)},
		{"runes", "héllo wörld", 5, "héllo"},
		{"no limit", "abc", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestEllipsize(t *testing.T) {
	if got := Ellipsize("short", LogPreviewLen); got != "short" {
		t.Errorf("Ellipsize short = %q", got)
	}

	long := strings.Repeat("y", LogPreviewLen+1)
	want := strings.Repeat("y", LogPreviewLen) + "..."
	if got := Ellipsize(long, LogPreviewLen); got != want {
		t.Errorf("Ellipsize long = %q, want %q", got, want)
	}

	if got := Ellipsize("line1\nline2", LogPreviewLen); got != "line1 line2" {
		t.Errorf("Ellipsize multiline = %q", got)
	}
}
