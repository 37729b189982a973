// File: internal/config/config.go

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/berrythewa/multiclip/internal/hotkey"
	"github.com/berrythewa/multiclip/internal/platform"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Location of the persisted slot store
	StorePath string `json:"store_path" yaml:"store_path"`

	// Logging configuration
	Log LogConfig `json:"log" yaml:"log"`

	// Hotkey modifiers for the assign and paste actions
	Hotkeys HotkeyConfig `json:"hotkeys" yaml:"hotkeys"`

	// Clipboard backend selection
	Clipboard ClipboardConfig `json:"clipboard" yaml:"clipboard"`

	// Store locking
	Store StoreConfig `json:"store" yaml:"store"`
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	File        string `json:"file" yaml:"file"`                   // empty disables file logging
	MaxLogSize  int    `json:"max_log_size" yaml:"max_log_size"`   // megabytes
	MaxLogFiles int    `json:"max_log_files" yaml:"max_log_files"` // rotated files kept
}

// HotkeyConfig holds the modifier used for each action
type HotkeyConfig struct {
	AssignModifier string `json:"assign_modifier" yaml:"assign_modifier"`
	PasteModifier  string `json:"paste_modifier" yaml:"paste_modifier"`
}

// ClipboardConfig holds clipboard backend options
type ClipboardConfig struct {
	Backends []string      `json:"backends" yaml:"backends"` // probe order; empty means platform default
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// StoreConfig holds storage-related configuration
type StoreConfig struct {
	LockTimeout time.Duration `json:"lock_timeout" yaml:"lock_timeout"`
}

// getConfigPath and userHomeDir are replaced in tests
var (
	getConfigPath = defaultConfigPath
	userHomeDir   = os.UserHomeDir
)

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	home, err := userHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		StorePath: filepath.Join(home, ".multiclip.json"),
		Log: LogConfig{
			Level:       "info",
			MaxLogSize:  10,
			MaxLogFiles: 5,
		},
		Hotkeys: HotkeyConfig{
			AssignModifier: string(hotkey.ModCtrl),
			PasteModifier:  string(hotkey.ModAlt),
		},
		Clipboard: ClipboardConfig{
			Timeout: 2 * time.Second,
		},
		Store: StoreConfig{
			LockTimeout: 2 * time.Second,
		},
	}
}

// defaultConfigPath returns $MULTICLIP_CONFIG or <UserConfigDir>/multiclip/config.yaml
func defaultConfigPath() (string, error) {
	if path := os.Getenv("MULTICLIP_CONFIG"); path != "" {
		return path, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "multiclip", "config.yaml"), nil
}

// Path returns the config file location used when none is given explicitly.
func Path() (string, error) {
	return getConfigPath()
}

// Load loads the configuration from configPath, or the default location when
// empty. A missing file yields defaults. Environment overrides are applied
// and the result is validated.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	overrideFromEnv(cfg)
	cfg.StorePath = expandHome(cfg.StorePath)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed
func (c *Config) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later at daemon startup
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StorePath) == "" {
		return fmt.Errorf("store_path is empty")
	}

	assign, err := hotkey.ParseModifier(c.Hotkeys.AssignModifier)
	if err != nil {
		return fmt.Errorf("hotkeys.assign_modifier: %w", err)
	}
	paste, err := hotkey.ParseModifier(c.Hotkeys.PasteModifier)
	if err != nil {
		return fmt.Errorf("hotkeys.paste_modifier: %w", err)
	}
	if assign == paste {
		return fmt.Errorf("hotkeys: assign and paste modifiers must differ")
	}

	for _, b := range c.Clipboard.Backends {
		if !platform.IsKnownBackend(b) {
			return fmt.Errorf("clipboard.backends: unknown backend %q (known: %s)",
				b, strings.Join(platform.KnownBackends(), ", "))
		}
	}
	if c.Clipboard.Timeout <= 0 {
		return fmt.Errorf("clipboard.timeout must be positive")
	}
	if c.Store.LockTimeout <= 0 {
		return fmt.Errorf("store.lock_timeout must be positive")
	}
	return nil
}

// Modifiers returns the parsed assign and paste modifiers.
func (c *Config) Modifiers() (assign, paste hotkey.Modifier, err error) {
	if assign, err = hotkey.ParseModifier(c.Hotkeys.AssignModifier); err != nil {
		return "", "", err
	}
	if paste, err = hotkey.ParseModifier(c.Hotkeys.PasteModifier); err != nil {
		return "", "", err
	}
	return assign, paste, nil
}

// overrideFromEnv overrides configuration values from environment variables
func overrideFromEnv(config *Config) {
	if val := os.Getenv("MULTICLIP_STORE"); val != "" {
		config.StorePath = val
	}
	if val := os.Getenv("MULTICLIP_LOG_LEVEL"); val != "" {
		config.Log.Level = val
	}
	if val := os.Getenv("MULTICLIP_LOG_FILE"); val != "" {
		config.Log.File = val
	}
	if val := os.Getenv("MULTICLIP_BACKENDS"); val != "" {
		config.Clipboard.Backends = strings.Split(val, ",")
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := userHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
