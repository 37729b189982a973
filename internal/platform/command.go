package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// lookPath and runCommand are swapped out in tests.
var (
	lookPath   = exec.LookPath
	runCommand = execCommand
)

// waitDelay bounds how long Wait keeps going after the tool exits or the
// context expires while a forked child still holds its pipes.
const waitDelay = 250 * time.Millisecond

func hasCommand(name string) bool {
	_, err := lookPath(name)
	return err == nil
}

// execCommand runs name with args and returns stdout. With stdin set the call
// is a clipboard write: xclip, xsel and wl-copy fork a child that owns the
// selection until another client takes it, so stdout and stderr are left
// unattached and the call returns once the parent exits.
func execCommand(ctx context.Context, stdin *string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	if stdin != nil {
		cmd.Stdin = strings.NewReader(*stdin)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	if err != nil && ctx.Err() == nil && errors.Is(err, exec.ErrWaitDelay) {
		// the tool exited cleanly but left a child holding the output pipe
		err = nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", name, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stdout.String(), nil
}

// commandBackend drives external clipboard tools. Read commands are tried in
// order until one succeeds with non-empty output.
type commandBackend struct {
	name  string
	reads [][]string
	write []string
}

func newXclipBackend() Backend {
	return &commandBackend{
		name: BackendXclip,
		reads: [][]string{
			{"xclip", "-selection", "primary", "-o"},
			{"xclip", "-selection", "clipboard", "-o"},
		},
		write: []string{"xclip", "-selection", "clipboard", "-i"},
	}
}

func newXselBackend() Backend {
	return &commandBackend{
		name: BackendXsel,
		reads: [][]string{
			{"xsel", "--primary", "--output"},
			{"xsel", "--clipboard", "--output"},
		},
		write: []string{"xsel", "--clipboard", "--input"},
	}
}

func newWaylandBackend() Backend {
	return &commandBackend{
		name: BackendWayland,
		reads: [][]string{
			{"wl-paste", "--primary", "--no-newline"},
			{"wl-paste", "--no-newline"},
		},
		write: []string{"wl-copy"},
	}
}

// macOS has no primary selection; the pasteboard is read instead.
func newPasteboardBackend() Backend {
	return &commandBackend{
		name:  BackendPasteboard,
		reads: [][]string{{"pbpaste"}},
		write: []string{"pbcopy"},
	}
}

func (b *commandBackend) Name() string {
	return b.name
}

func (b *commandBackend) ReadSelection(ctx context.Context) (string, error) {
	var toolErr error
	for _, argv := range b.reads {
		out, err := runCommand(ctx, nil, argv[0], argv[1:]...)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("%w: %v", ErrToolFailed, err)
			}
			// xclip and wl-paste exit non-zero when the selection is empty.
			if !isExitError(err) {
				toolErr = err
			}
			continue
		}
		if text := strings.TrimSpace(out); text != "" {
			return text, nil
		}
	}

	if toolErr != nil {
		return "", fmt.Errorf("%w: %v", ErrToolFailed, toolErr)
	}
	return "", ErrNothingSelected
}

func (b *commandBackend) WriteClipboard(ctx context.Context, text string) error {
	if _, err := runCommand(ctx, &text, b.write[0], b.write[1:]...); err != nil {
		return fmt.Errorf("%w: %v", ErrToolFailed, err)
	}
	return nil
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
