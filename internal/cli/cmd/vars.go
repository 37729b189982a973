package cmd

import (
	"errors"

	"github.com/berrythewa/multiclip/internal/config"
	"github.com/berrythewa/multiclip/internal/storage"
	"go.uber.org/zap"
)

// Shared variables across all commands
var (
	cfg       *config.Config
	zapLogger *zap.Logger

	// path given with --config, empty for the default location
	cfgFile string
)

// SetConfig sets the configuration for commands
func SetConfig(config *config.Config, path string) {
	cfg = config
	cfgFile = path
}

func GetConfig() *config.Config {
	return cfg
}

// SetZapLogger sets the logger for commands
func SetZapLogger(log *zap.Logger) {
	zapLogger = log
}

func GetZapLogger() *zap.Logger {
	if zapLogger == nil {
		return zap.NewNop()
	}
	return zapLogger
}

// openStore opens the slot store named by the active configuration.
func openStore() (*storage.SlotStore, error) {
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return storage.NewSlotStore(storage.StoreConfig{
		Path:        cfg.StorePath,
		LockTimeout: cfg.Store.LockTimeout,
		Logger:      GetZapLogger(),
	})
}
