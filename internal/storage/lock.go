package storage

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrLockTimeout is returned when another process holds the store lock for
// longer than the configured timeout.
var ErrLockTimeout = errors.New("timed out waiting for store lock")

const lockPollInterval = 20 * time.Millisecond

type fileLock struct {
	f *os.File
}

// acquireLock takes an exclusive advisory lock on path, polling until timeout.
func acquireLock(path string, timeout time.Duration) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err := tryLock(f)
		if err == nil {
			return &fileLock{f: f}, nil
		}
		if !isLockBusy(err) {
			f.Close()
			return nil, fmt.Errorf("failed to lock %s: %w", path, err)
		}
		if time.Now().After(deadline) {
			f.Close()
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, path)
		}
		time.Sleep(lockPollInterval)
	}
}

func (l *fileLock) release() error {
	unlockErr := unlock(l.f)
	closeErr := l.f.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
