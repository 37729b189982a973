package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidSlot is returned when a slot identifier is outside the A-Z, 1-9 universe.
var ErrInvalidSlot = errors.New("invalid slot")

// SlotID names one of the 35 clipboard registers.
type SlotID string

// Slot is the current content of a register.
type Slot struct {
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// HistoryEntry is an immutable record of one assignment.
type HistoryEntry struct {
	Slot    SlotID    `json:"slot"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// AllSlots returns the slot universe in binding order: A..Z then 1..9.
func AllSlots() []SlotID {
	slots := make([]SlotID, 0, 35)
	for c := 'A'; c <= 'Z'; c++ {
		slots = append(slots, SlotID(c))
	}
	for c := '1'; c <= '9'; c++ {
		slots = append(slots, SlotID(c))
	}
	return slots
}

// ParseSlot normalises user input into a SlotID. Input is case-insensitive.
func ParseSlot(s string) (SlotID, error) {
	id := SlotID(strings.ToUpper(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q (expected A-Z or 1-9)", ErrInvalidSlot, s)
	}
	return id, nil
}

// Valid reports whether the identifier belongs to the slot universe.
func (id SlotID) Valid() bool {
	if len(id) != 1 {
		return false
	}
	c := id[0]
	return (c >= 'A' && c <= 'Z') || (c >= '1' && c <= '9')
}

// Key returns the lowercase key name used in hotkey combos.
func (id SlotID) Key() string {
	return strings.ToLower(string(id))
}

func (id SlotID) String() string {
	return string(id)
}
