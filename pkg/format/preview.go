package format

import (
	"strings"
	"unicode/utf8"
)

const (
	// ListPreviewLen is the preview width used by the list command.
	ListPreviewLen = 40

	// LogPreviewLen is how much of an assigned value the daemon logs.
	LogPreviewLen = 60
)

// Preview collapses newlines to spaces and keeps the first maxLen runes.
func Preview(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return truncateRunes(text, maxLen)
}

// Ellipsize keeps the first maxLen runes and appends "..." if anything was cut.
// Newlines are collapsed so the result fits on one log line.
func Ellipsize(text string, maxLen int) string {
	p := Preview(text, maxLen)
	if utf8.RuneCountInString(text) > maxLen {
		return p + "..."
	}
	return p
}

func truncateRunes(text string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen])
}
