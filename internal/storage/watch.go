package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/berrythewa/multiclip/internal/types"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch calls onChange with the reloaded store each time the store file is
// written or replaced, until ctx is cancelled. A single save may produce more
// than one call.
func (s *SlotStore) Watch(ctx context.Context, onChange func(*types.Store)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	// Saves rename a temp file over the target, so watch the directory.
	dir := filepath.Dir(s.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			onChange(s.Load())
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("File watcher error", zap.String("path", dir), zap.Error(err))
		}
	}
}
