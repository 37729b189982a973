package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// staleTempAge is how old a leftover temp file must be before it is removed.
// Younger files may belong to a save in progress in another process.
const staleTempAge = time.Minute

// tempPattern matches the temp files writeFileAtomic creates for path.
func tempPattern(path string) string {
	return filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.*.tmp", filepath.Base(path)))
}

// removeStaleTemps deletes temp files for path that were abandoned by an
// interrupted save and returns how many were removed.
func removeStaleTemps(path string, olderThan time.Duration, now time.Time) (int, error) {
	files, err := filepath.Glob(tempPattern(path))
	if err != nil {
		return 0, fmt.Errorf("failed to glob temp files: %w", err)
	}

	removed := 0
	var errs []error
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < olderThan {
			continue
		}
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", file, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
