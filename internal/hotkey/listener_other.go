//go:build !(linux || freebsd || openbsd || netbsd || dragonfly || windows)

package hotkey

import (
	"fmt"
	"runtime"
)

// NewListener reports that no global hotkey facility is implemented here.
func NewListener() (Listener, error) {
	return nil, fmt.Errorf("%w on %s", ErrUnavailable, runtime.GOOS)
}
