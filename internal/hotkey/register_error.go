package hotkey

import (
	"fmt"
	"strings"
)

// RegisterError reports combos a Listener could not register, because another
// application already owns them or the keyboard has no such key. The remaining combos stay active.
type RegisterError struct {
	Failed     []string
	Registered int
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("failed to register %d hotkey(s): %s", len(e.Failed), strings.Join(e.Failed, ", "))
}
