package hotkey

import (
	"context"
	"errors"
)

// ErrUnavailable means global hotkeys cannot be used on this system.
var ErrUnavailable = errors.New("global hotkeys unavailable")

// Listener is the OS hotkey capability. Callbacks run one at a time on the
// goroutine that called Listen.
type Listener interface {
	// Register activates every combo in handlers and reports failures before
	// returning. It must be called before Listen.
	Register(handlers map[string]func()) error

	// Listen blocks delivering events until ctx is cancelled or the
	// underlying connection fails.
	Listen(ctx context.Context) error

	// Close releases every hotkey and the OS connection.
	Close() error
}
