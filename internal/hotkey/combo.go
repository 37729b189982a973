package hotkey

import (
	"fmt"
	"strings"
)

// Modifier is a modifier key usable in a combo.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModAlt   Modifier = "alt"
	ModShift Modifier = "shift"
	ModSuper Modifier = "super"
)

// ParseModifier accepts "ctrl", "<ctrl>", "Control", "cmd" and similar spellings.
func ParseModifier(s string) (Modifier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimSuffix(strings.TrimPrefix(name, "<"), ">")
	switch name {
	case "ctrl", "control":
		return ModCtrl, nil
	case "alt", "option", "mod1":
		return ModAlt, nil
	case "shift":
		return ModShift, nil
	case "super", "cmd", "win", "mod4":
		return ModSuper, nil
	}
	return "", fmt.Errorf("unknown modifier %q", s)
}

// Tag renders the modifier the way combos spell it, e.g. "<ctrl>".
func (m Modifier) Tag() string {
	return "<" + string(m) + ">"
}

// Combo is a parsed key combination: zero or more modifiers plus one key.
type Combo struct {
	Modifiers []Modifier
	Key       rune
}

// Has reports whether the combo includes m.
func (c Combo) Has(m Modifier) bool {
	for _, mod := range c.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

// String formats the combo back into "<mod>+...+key" form.
func (c Combo) String() string {
	parts := make([]string, 0, len(c.Modifiers)+1)
	for _, m := range c.Modifiers {
		parts = append(parts, m.Tag())
	}
	parts = append(parts, string(c.Key))
	return strings.Join(parts, "+")
}

// ParseCombo parses strings like "<ctrl>+a" or "<alt>+<shift>+7". The key must
// be a single ASCII letter or digit; letters are normalised to lowercase.
func ParseCombo(s string) (Combo, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	if len(parts) < 2 {
		return Combo{}, fmt.Errorf("combo %q needs at least one modifier and a key", s)
	}

	var combo Combo
	for _, p := range parts[:len(parts)-1] {
		m, err := ParseModifier(p)
		if err != nil {
			return Combo{}, fmt.Errorf("combo %q: %w", s, err)
		}
		if combo.Has(m) {
			return Combo{}, fmt.Errorf("combo %q repeats modifier %s", s, m)
		}
		combo.Modifiers = append(combo.Modifiers, m)
	}

	key := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	if len(key) != 1 || !isComboKey(key[0]) {
		return Combo{}, fmt.Errorf("combo %q: key must be a single letter or digit", s)
	}
	combo.Key = rune(key[0])
	return combo, nil
}

func isComboKey(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
