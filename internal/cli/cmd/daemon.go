package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/berrythewa/multiclip/internal/daemon"
	"github.com/berrythewa/multiclip/internal/hotkey"
	"github.com/berrythewa/multiclip/internal/platform"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newListener and probeBackend are replaced in tests
var (
	newListener  = hotkey.NewListener
	probeBackend = platform.Probe
)

// newDaemonCmd creates the daemon command
func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the hotkey daemon in the foreground",
		Long: `Run the hotkey daemon in the foreground until interrupted.

Assign hotkeys copy the current selection into a slot; paste hotkeys put a
slot's content on the clipboard. Run "multiclip bindings" to see the table.
Use a service manager (systemd, launchd) to run it in the background.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDaemon(ctx)
		},
	}
}

func runDaemon(ctx context.Context) error {
	logger := GetZapLogger()

	router, err := newRouter()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	d, err := daemon.New(daemon.Options{
		Store:         store,
		OpenListener:  newListener,
		Router:        router,
		Probe:         probeBackend,
		Preference:    cfg.Clipboard.Backends,
		ActionTimeout: cfg.Clipboard.Timeout,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	logger.Debug("Starting daemon", zap.String("store", store.Path()))
	return d.Run(ctx)
}

// newRouter builds the binding table from the configured modifiers.
func newRouter() (*hotkey.Router, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	assign, paste, err := cfg.Modifiers()
	if err != nil {
		return nil, err
	}
	return hotkey.NewRouter(assign, paste)
}
