// Package daemon runs the hotkey-driven slot loop: it registers the slot hotkeys,
// reads the selection into slots and writes slots back to the clipboard.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/berrythewa/multiclip/internal/hotkey"
	"github.com/berrythewa/multiclip/internal/platform"
	"github.com/berrythewa/multiclip/internal/types"
	"github.com/berrythewa/multiclip/pkg/format"
	sddaemon "github.com/coreos/go-systemd/v22/daemon"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultActionTimeout   = 2 * time.Second
	defaultRetryBackoff    = time.Second
	defaultMaxRetryBackoff = 30 * time.Second
)

// SlotStore is the part of storage.SlotStore the daemon needs.
type SlotStore interface {
	Assign(slot types.SlotID, content string) (bool, error)
	Get(slot types.SlotID) (types.Slot, bool)
	Path() string
}

// ProbeFunc selects a clipboard backend from a preference list.
type ProbeFunc func(preference []string, logger *zap.Logger) (platform.Backend, error)

// Options configures a Daemon. Store, Router and either Listener or
// OpenListener are required.
type Options struct {
	Store  SlotStore
	Router *hotkey.Router

	// Listener is used as given. Otherwise OpenListener is called once the
	// clipboard backend has been selected.
	Listener     hotkey.Listener
	OpenListener func() (hotkey.Listener, error)

	// Probe defaults to platform.Probe.
	Probe ProbeFunc

	// Preference is the clipboard backend probe order; empty uses the platform default.
	Preference []string

	// ActionTimeout bounds every clipboard call.
	ActionTimeout time.Duration

	// RetryBackoff and MaxRetryBackoff bound the wait before re-entering
	// Listen after a listener failure.
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration

	// Notify defaults to sd_notify.
	Notify Notifier

	Logger *zap.Logger
}

// Daemon owns the hotkey listener and dispatches slot actions.
// It is safe for concurrent use.
type Daemon struct {
	store        SlotStore
	listener     hotkey.Listener
	openListener func() (hotkey.Listener, error)
	router       *hotkey.Router
	probe        ProbeFunc
	notify       Notifier
	logger       *zap.Logger

	preference      []string
	actionTimeout   time.Duration
	retryBackoff    time.Duration
	maxRetryBackoff time.Duration

	mu      sync.RWMutex
	state   State
	backend platform.Backend

	// actionMu serialises assign and paste
	actionMu sync.Mutex
}

// New creates a Daemon in the idle state.
func New(opts Options) (*Daemon, error) {
	if opts.Store == nil {
		return nil, errors.New("daemon: store is required")
	}
	if opts.Listener == nil && opts.OpenListener == nil {
		return nil, errors.New("daemon: listener is required")
	}
	if opts.Router == nil {
		return nil, errors.New("daemon: router is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", uuid.NewString()))

	d := &Daemon{
		store:           opts.Store,
		listener:        opts.Listener,
		openListener:    opts.OpenListener,
		router:          opts.Router,
		probe:           opts.Probe,
		notify:          opts.Notify,
		logger:          logger,
		preference:      opts.Preference,
		actionTimeout:   opts.ActionTimeout,
		retryBackoff:    opts.RetryBackoff,
		maxRetryBackoff: opts.MaxRetryBackoff,
		state:           StateIdle,
	}

	if d.probe == nil {
		d.probe = platform.Probe
	}
	if d.notify == nil {
		d.notify = systemdNotify(logger)
	}
	if d.actionTimeout <= 0 {
		d.actionTimeout = defaultActionTimeout
	}
	if d.retryBackoff <= 0 {
		d.retryBackoff = defaultRetryBackoff
	}
	if d.maxRetryBackoff < d.retryBackoff {
		d.maxRetryBackoff = max(defaultMaxRetryBackoff, d.retryBackoff)
	}

	return d, nil
}

// State returns the current daemon state.
func (d *Daemon) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *Daemon) setState(state State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.state.CanTransitionTo(state) {
		d.logger.Warn("Unexpected state transition",
			zap.Stringer("from", d.state), zap.Stringer("to", state))
	}
	d.state = state
}

// Run starts the daemon and blocks until ctx is cancelled. Errors are only
// returned for startup failures: no clipboard backend or no hotkeys. The
// clipboard is checked first.
func (d *Daemon) Run(ctx context.Context) error {
	if d.State() != StateIdle {
		return fmt.Errorf("daemon already started (state %s)", d.State())
	}

	backend, err := d.probe(d.preference, d.logger)
	if err != nil {
		d.setState(StateTerminated)
		return fmt.Errorf("failed to select clipboard backend: %w", err)
	}
	d.mu.Lock()
	d.backend = backend
	d.mu.Unlock()

	if d.listener == nil {
		listener, err := d.openListener()
		if err != nil {
			d.setState(StateTerminated)
			return fmt.Errorf("failed to open hotkey listener: %w", err)
		}
		d.listener = listener
	}

	if err := d.register(); err != nil {
		d.setState(StateTerminated)
		return err
	}

	d.setState(StateRunning)
	d.logBanner(backend.Name())
	if err := d.notify(sddaemon.SdNotifyReady); err != nil {
		d.logger.Warn("Failed to notify service manager", zap.Error(err))
	}

	d.listen(ctx)

	d.shutdown()
	return nil
}

// register hands every binding to the listener. A partial failure is tolerated as long as
// at least one combo is active.
func (d *Daemon) register() error {
	err := d.listener.Register(d.router.Handlers(d))
	if err == nil {
		return nil
	}

	var regErr *hotkey.RegisterError
	if errors.As(err, &regErr) && regErr.Registered > 0 {
		d.logger.Warn("Some hotkeys are unavailable",
			zap.Strings("combos", regErr.Failed),
			zap.Int("registered", regErr.Registered))
		return nil
	}

	if cerr := d.listener.Close(); cerr != nil {
		d.logger.Debug("Failed to close listener", zap.Error(cerr))
	}
	return fmt.Errorf("failed to register hotkeys: %w", err)
}

// listen keeps the listener running until ctx is cancelled, retrying with
// exponential backoff when it fails.
func (d *Daemon) listen(ctx context.Context) {
	backoff := d.retryBackoff
	for {
		err := d.listener.Listen(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errors.New("listener stopped unexpectedly")
		}

		d.logger.Error("Hotkey listener failed, retrying",
			zap.Error(err), zap.Duration("backoff", backoff))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		backoff = min(backoff*2, d.maxRetryBackoff)
	}
}

func (d *Daemon) shutdown() {
	d.setState(StateStopping)
	d.logger.Info("Stopping daemon")
	if err := d.notify(sddaemon.SdNotifyStopping); err != nil {
		d.logger.Warn("Failed to notify service manager", zap.Error(err))
	}

	if err := d.listener.Close(); err != nil {
		d.logger.Warn("Failed to release hotkeys", zap.Error(err))
	}

	// wait for an in-flight action
	d.actionMu.Lock()
	d.actionMu.Unlock()

	d.setState(StateTerminated)
	d.logger.Info("Daemon stopped")
	_ = d.logger.Sync()
}

func (d *Daemon) logBanner(backend string) {
	d.logger.Info(fmt.Sprintf("Daemon started, global hotkeys active (platform=%s)", runtime.GOOS),
		zap.String("backend", backend),
		zap.String("store", d.store.Path()))
	d.logger.Info("Available slots:")
	for _, slot := range types.AllSlots() {
		assign, paste := d.router.Combos(slot)
		d.logger.Info(fmt.Sprintf("  %s: assign %s | paste %s", slot, assign, paste))
	}
	d.logger.Info("Press Ctrl+C to stop daemon")
}

func (d *Daemon) currentBackend() platform.Backend {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.backend
}

// Assign reads the current selection into slot.
func (d *Daemon) Assign(slot types.SlotID) {
	d.actionMu.Lock()
	defer d.actionMu.Unlock()

	backend := d.currentBackend()
	if backend == nil {
		d.logger.Error("No clipboard backend", zap.String("slot", slot.String()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.actionTimeout)
	defer cancel()

	text, err := backend.ReadSelection(ctx)
	switch {
	case errors.Is(err, platform.ErrNothingSelected):
		d.logger.Info(fmt.Sprintf("%s: nothing selected", slot), zap.String("slot", slot.String()))
		return
	case err != nil:
		d.logger.Warn("Failed to read selection", zap.String("slot", slot.String()), zap.Error(err))
		return
	}

	// an empty read is reported by the store itself
	assigned, err := d.store.Assign(slot, text)
	if err != nil {
		d.logger.Error("Failed to save slot", zap.String("slot", slot.String()), zap.Error(err))
		return
	}
	if assigned {
		d.logger.Info(fmt.Sprintf("%s <- %s", slot, format.Ellipsize(text, format.LogPreviewLen)),
			zap.String("slot", slot.String()))
	}
}

// Paste puts slot's content on the clipboard. An empty slot never touches
// the clipboard.
func (d *Daemon) Paste(slot types.SlotID) {
	d.actionMu.Lock()
	defer d.actionMu.Unlock()

	value, ok := d.store.Get(slot)
	if !ok {
		d.logger.Info(fmt.Sprintf("%s is empty", slot), zap.String("slot", slot.String()))
		return
	}

	backend := d.currentBackend()
	if backend == nil {
		d.logger.Error("No clipboard backend", zap.String("slot", slot.String()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.actionTimeout)
	defer cancel()

	if err := backend.WriteClipboard(ctx, value.Content); err != nil {
		d.logger.Warn("Failed to write clipboard", zap.String("slot", slot.String()), zap.Error(err))
		return
	}
	d.logger.Info(fmt.Sprintf("%s -> clipboard", slot), zap.String("slot", slot.String()))
}
