package platform

import (
	"context"
	"fmt"
	"strings"

	atottoClip "github.com/atotto/clipboard"
)

// atottoBackend is the last-resort backend built on github.com/atotto/clipboard.
// The library has no notion of a primary selection, so reads come from the
// clipboard itself, and it takes no context: calls run in a goroutine so a
// hung helper cannot outlive the caller's deadline.
type atottoBackend struct {
	readAll  func() (string, error)
	writeAll func(string) error
}

func atottoAvailable() bool {
	return !atottoClip.Unsupported
}

func newAtottoBackend() Backend {
	return &atottoBackend{
		readAll:  atottoClip.ReadAll,
		writeAll: atottoClip.WriteAll,
	}
}

func (b *atottoBackend) Name() string {
	return BackendAtotto
}

func (b *atottoBackend) ReadSelection(ctx context.Context) (string, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := b.readAll()
		ch <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrToolFailed, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("%w: %v", ErrToolFailed, r.err)
		}
		text := strings.TrimSpace(r.text)
		if text == "" {
			return "", ErrNothingSelected
		}
		return text, nil
	}
}

func (b *atottoBackend) WriteClipboard(ctx context.Context, text string) error {
	ch := make(chan error, 1)
	go func() {
		ch <- b.writeAll(text)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrToolFailed, ctx.Err())
	case err := <-ch:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrToolFailed, err)
		}
		return nil
	}
}
