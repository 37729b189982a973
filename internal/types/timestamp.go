package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are the ISO-8601 forms accepted on load, most common first.
// Fractional seconds are accepted after the seconds field of any layout.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 date or date-time. Values without an
// offset are taken as UTC. An empty string yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 time %q", s)
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Content string `json:"content"`
		Time    string `json:"time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := ParseTimestamp(raw.Time)
	if err != nil {
		return err
	}
	*s = Slot{Content: raw.Content, Time: t}
	return nil
}

func (h *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Slot    SlotID `json:"slot"`
		Content string `json:"content"`
		Time    string `json:"time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := ParseTimestamp(raw.Time)
	if err != nil {
		return err
	}
	*h = HistoryEntry{Slot: raw.Slot, Content: raw.Content, Time: t}
	return nil
}
