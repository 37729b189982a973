// Package hotkey maps slot hotkeys to actions and delivers them from the
// operating system's global hotkey facility.
package hotkey

import (
	"fmt"

	"github.com/berrythewa/multiclip/internal/types"
)

// ActionKind distinguishes the two things a slot hotkey can do.
type ActionKind int

const (
	ActionAssign ActionKind = iota
	ActionPaste
)

func (k ActionKind) String() string {
	switch k {
	case ActionAssign:
		return "assign"
	case ActionPaste:
		return "paste"
	default:
		return "unknown"
	}
}

// Action is what a combo triggers.
type Action struct {
	Kind ActionKind
	Slot types.SlotID
}

// Binding pairs a combo string with its action.
type Binding struct {
	Combo  string
	Action Action
}

// Handler performs the actions bound by the router.
type Handler interface {
	Assign(slot types.SlotID)
	Paste(slot types.SlotID)
}

// Router derives the fixed binding table from the slot universe. It never
// touches the OS; a Listener does the registration.
type Router struct {
	assignMod Modifier
	pasteMod  Modifier
	bindings  []Binding
}

// NewRouter builds the table once. The two modifiers must differ so assign and
// paste combos can never collide.
func NewRouter(assignMod, pasteMod Modifier) (*Router, error) {
	if assignMod == pasteMod {
		return nil, fmt.Errorf("assign and paste modifiers must differ (both %s)", assignMod)
	}

	slots := types.AllSlots()
	bindings := make([]Binding, 0, 2*len(slots))
	for _, slot := range slots {
		bindings = append(bindings,
			Binding{Combo: assignMod.Tag() + "+" + slot.Key(), Action: Action{Kind: ActionAssign, Slot: slot}},
			Binding{Combo: pasteMod.Tag() + "+" + slot.Key(), Action: Action{Kind: ActionPaste, Slot: slot}},
		)
	}

	return &Router{
		assignMod: assignMod,
		pasteMod:  pasteMod,
		bindings:  bindings,
	}, nil
}

// Bindings returns a copy of the table in slot order, assign before paste.
func (r *Router) Bindings() []Binding {
	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// Combos returns the assign and paste combo for slot.
func (r *Router) Combos(slot types.SlotID) (assign, paste string) {
	return r.assignMod.Tag() + "+" + slot.Key(), r.pasteMod.Tag() + "+" + slot.Key()
}

// Handlers returns combo -> callback for registration with a Listener.
func (r *Router) Handlers(h Handler) map[string]func() {
	out := make(map[string]func(), len(r.bindings))
	for _, b := range r.bindings {
		out[b.Combo] = bind(h, b.Action)
	}
	return out
}

// bind returns a callback closed over its own copy of action.
func bind(h Handler, action Action) func() {
	switch action.Kind {
	case ActionAssign:
		return func() { h.Assign(action.Slot) }
	default:
		return func() { h.Paste(action.Slot) }
	}
}
