package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

const (
	slotsKey   = "slots"
	historyKey = "history"
)

// Store is the full persisted state: current slots plus the assignment log.
// Extra holds top-level keys this version does not understand so that a
// load/save cycle does not drop them.
type Store struct {
	Slots   map[SlotID]Slot
	History []HistoryEntry
	Extra   map[string]json.RawMessage
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		Slots:   make(map[SlotID]Slot),
		History: []HistoryEntry{},
	}
}

// SortedSlots returns slot ids present in the store in string order.
func (s *Store) SortedSlots() []SlotID {
	ids := make([]SlotID, 0, len(s.Slots))
	for id := range s.Slots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Validate checks that every slot key and history entry names a known slot.
func (s *Store) Validate() error {
	for id := range s.Slots {
		if !id.Valid() {
			return fmt.Errorf("%w: slot key %q", ErrInvalidSlot, id)
		}
	}
	for i, h := range s.History {
		if !h.Slot.Valid() {
			return fmt.Errorf("%w: history entry %d references %q", ErrInvalidSlot, i, h.Slot)
		}
	}
	return nil
}

// Sanitize drops slot keys and history entries outside the slot universe and
// returns how many were removed.
func (s *Store) Sanitize() int {
	dropped := 0
	for id := range s.Slots {
		if !id.Valid() {
			delete(s.Slots, id)
			dropped++
		}
	}
	kept := s.History[:0]
	for _, h := range s.History {
		if h.Slot.Valid() {
			kept = append(kept, h)
		} else {
			dropped++
		}
	}
	s.History = kept
	return dropped
}

// MarshalJSON writes {"slots": ..., "history": ...} followed by any preserved keys.
func (s Store) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+2)
	for k, v := range s.Extra {
		out[k] = v
	}
	slots := s.Slots
	if slots == nil {
		slots = map[SlotID]Slot{}
	}
	history := s.History
	if history == nil {
		history = []HistoryEntry{}
	}
	out[slotsKey] = slots
	out[historyKey] = history
	return json.Marshal(out)
}

// UnmarshalJSON accepts a JSON object; missing slots or history default to empty.
func (s *Store) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("store must be a JSON object")
	}

	slots := make(map[SlotID]Slot)
	if v, ok := raw[slotsKey]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &slots); err != nil {
			return fmt.Errorf("decode slots: %w", err)
		}
	}
	history := []HistoryEntry{}
	if v, ok := raw[historyKey]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &history); err != nil {
			return fmt.Errorf("decode history: %w", err)
		}
	}
	delete(raw, slotsKey)
	delete(raw, historyKey)

	// Compact preserved values so a reload of our own indented output
	// compares equal to the first load.
	for k, v := range raw {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return fmt.Errorf("decode %s: %w", k, err)
		}
		raw[k] = buf.Bytes()
	}

	s.Slots = slots
	s.History = history
	s.Extra = nil
	if len(raw) > 0 {
		s.Extra = raw
	}
	return nil
}
