package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/berrythewa/multiclip/internal/types"
	"go.uber.org/zap"
)

const defaultLockTimeout = 2 * time.Second

// StoreConfig holds configuration for SlotStore initialization
type StoreConfig struct {
	Path        string
	LockTimeout time.Duration
	Logger      *zap.Logger
}

// SlotStore persists slots and history as a single JSON file.
//
// Nothing is cached between calls: every operation reloads the file, and every
// mutation is a full load/modify/save cycle performed while holding an
// exclusive lock on a sibling ".lock" file. Writes go to a temp file that is
// renamed over the target, so readers never observe a partial file.
type SlotStore struct {
	path        string
	lockPath    string
	lockTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewSlotStore creates a SlotStore for the given file, creating its parent directory.
func NewSlotStore(config StoreConfig) (*SlotStore, error) {
	if config.Path == "" {
		return nil, errors.New("store path is empty")
	}

	lockTimeout := config.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	removed, err := removeStaleTemps(config.Path, staleTempAge, time.Now())
	if err != nil {
		logger.Warn("Failed to remove stale temp files", zap.String("path", config.Path), zap.Error(err))
	} else if removed > 0 {
		logger.Info("Removed stale temp files", zap.String("path", config.Path), zap.Int("count", removed))
	}

	return &SlotStore{
		path:        config.Path,
		lockPath:    config.Path + ".lock",
		lockTimeout: lockTimeout,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Path returns the location of the persisted store.
func (s *SlotStore) Path() string {
	return s.path
}

// Load reads the persisted store. A missing, unreadable or corrupt file
// yields an empty store; the failure is logged, never returned.
func (s *SlotStore) Load() *types.Store {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read store, starting empty", zap.String("path", s.path), zap.Error(err))
		}
		return types.NewStore()
	}

	var store types.Store
	if err := json.Unmarshal(data, &store); err != nil {
		s.logger.Warn("Store file is corrupt, starting empty", zap.String("path", s.path), zap.Error(err))
		return types.NewStore()
	}

	if dropped := store.Sanitize(); dropped > 0 {
		s.logger.Warn("Dropped entries with unknown slot ids", zap.String("path", s.path), zap.Int("dropped", dropped))
	}
	return &store
}

// Save serializes the full store and atomically replaces the persisted copy.
func (s *SlotStore) Save(store *types.Store) error {
	if err := writeJSONAtomic(s.path, store); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}

// Assign stores content in slot and appends a history entry with the same
// timestamp. Empty content is a no-op and reports false.
func (s *SlotStore) Assign(slot types.SlotID, content string) (bool, error) {
	if !slot.Valid() {
		return false, fmt.Errorf("%w: %q", types.ErrInvalidSlot, slot)
	}
	if content == "" {
		s.logger.Info(fmt.Sprintf("%s: nothing selected", slot), zap.String("slot", slot.String()))
		return false, nil
	}

	err := s.withLock(func() error {
		store := s.Load()
		now := s.now()
		store.Slots[slot] = types.Slot{Content: content, Time: now}
		store.History = append(store.History, types.HistoryEntry{
			Slot:    slot,
			Content: content,
			Time:    now,
		})
		return s.Save(store)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes slot from the store and reports whether it existed.
// History is left untouched.
func (s *SlotStore) Clear(slot types.SlotID) (bool, error) {
	if !slot.Valid() {
		return false, fmt.Errorf("%w: %q", types.ErrInvalidSlot, slot)
	}

	var existed bool
	err := s.withLock(func() error {
		store := s.Load()
		if _, ok := store.Slots[slot]; !ok {
			return nil
		}
		existed = true
		delete(store.Slots, slot)
		return s.Save(store)
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// Get returns the slot's current value. Slots with empty content count as unset.
func (s *SlotStore) Get(slot types.SlotID) (types.Slot, bool) {
	v, ok := s.Load().Slots[slot]
	if !ok || v.Content == "" {
		return types.Slot{}, false
	}
	return v, true
}

// Replace validates store and makes it the persisted state, discarding
// whatever was there before.
func (s *SlotStore) Replace(store *types.Store) error {
	if err := store.Validate(); err != nil {
		return err
	}
	return s.withLock(func() error {
		return s.Save(store)
	})
}

// Export writes the current store to an arbitrary path.
func (s *SlotStore) Export(path string) error {
	if err := writeJSONAtomic(path, s.Load()); err != nil {
		return fmt.Errorf("failed to export store: %w", err)
	}
	return nil
}

// withLock runs fn while holding the store's exclusive file lock.
func (s *SlotStore) withLock(fn func() error) error {
	lock, err := acquireLock(s.lockPath, s.lockTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.release(); err != nil {
			s.logger.Warn("Failed to release store lock", zap.String("path", s.lockPath), zap.Error(err))
		}
	}()
	return fn()
}
