package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNothingSelected means the backend worked but there was no text to read.
	ErrNothingSelected = errors.New("nothing selected")

	// ErrToolFailed means the clipboard mechanism could not be invoked or
	// did not finish in time.
	ErrToolFailed = errors.New("clipboard tool failed")

	// ErrNoBackend is returned by Probe when no clipboard mechanism is usable.
	ErrNoBackend = errors.New("no usable clipboard backend")
)

// Backend is the clipboard capability used by the daemon. Assign reads the
// selection, paste writes the clipboard; implementations never touch the
// other buffer.
type Backend interface {
	// Name identifies the backend in logs and configuration
	Name() string

	// ReadSelection returns the currently selected text
	ReadSelection(ctx context.Context) (string, error)

	// WriteClipboard replaces the paste-target clipboard content
	WriteClipboard(ctx context.Context, text string) error
}

// candidate is an entry of the probe list.
type candidate struct {
	name      string
	available func() bool
	build     func() Backend
}

var candidates = map[string]candidate{
	BackendXclip: {
		name:      BackendXclip,
		available: func() bool { return hasCommand("xclip") },
		build:     newXclipBackend,
	},
	BackendXsel: {
		name:      BackendXsel,
		available: func() bool { return hasCommand("xsel") },
		build:     newXselBackend,
	},
	BackendWayland: {
		name:      BackendWayland,
		available: func() bool { return hasCommand("wl-paste") && hasCommand("wl-copy") },
		build:     newWaylandBackend,
	},
	BackendPasteboard: {
		name:      BackendPasteboard,
		available: func() bool { return hasCommand("pbpaste") && hasCommand("pbcopy") },
		build:     newPasteboardBackend,
	},
	BackendAtotto: {
		name:      BackendAtotto,
		available: atottoAvailable,
		build:     newAtottoBackend,
	},
}

// Backend names accepted in configuration.
const (
	BackendXclip      = "xclip"
	BackendXsel       = "xsel"
	BackendWayland    = "wl-clipboard"
	BackendPasteboard = "pbcopy"
	BackendAtotto     = "atotto"
)

// KnownBackends lists every backend name Probe understands.
func KnownBackends() []string {
	return []string{BackendXclip, BackendWayland, BackendXsel, BackendPasteboard, BackendAtotto}
}

// IsKnownBackend reports whether name can appear in a preference list.
func IsKnownBackend(name string) bool {
	_, ok := candidates[strings.ToLower(name)]
	return ok
}

// DefaultPreference returns the probe order for the running OS.
func DefaultPreference() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{BackendPasteboard, BackendAtotto}
	case "windows":
		return []string{BackendAtotto}
	default:
		return []string{BackendXclip, BackendWayland, BackendXsel, BackendAtotto}
	}
}

// Probe returns the first available backend in preference order. An empty
// preference uses DefaultPreference.
func Probe(preference []string, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(preference) == 0 {
		preference = DefaultPreference()
	}

	for _, name := range preference {
		c, ok := candidates[strings.ToLower(name)]
		if !ok {
			logger.Warn("Unknown clipboard backend in preference list", zap.String("backend", name))
			continue
		}
		if !c.available() {
			logger.Debug("Clipboard backend not available", zap.String("backend", c.name))
			continue
		}
		logger.Debug("Selected clipboard backend", zap.String("backend", c.name))
		return c.build(), nil
	}

	return nil, fmt.Errorf("%w (tried %s); install xclip or wl-clipboard (e.g. sudo apt install xclip)",
		ErrNoBackend, strings.Join(preference, ", "))
}
