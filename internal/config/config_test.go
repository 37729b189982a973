// File: internal/config/config_test.go

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// withTempHome points the config path and home directory at tempDir for the
// duration of the test.
func withTempHome(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	origGetConfigPath := getConfigPath
	origUserHomeDir := userHomeDir
	t.Cleanup(func() {
		getConfigPath = origGetConfigPath
		userHomeDir = origUserHomeDir
	})

	getConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "config.yaml"), nil
	}
	userHomeDir = func() (string, error) {
		return tempDir, nil
	}

	for _, key := range []string{"MULTICLIP_STORE", "MULTICLIP_LOG_LEVEL", "MULTICLIP_LOG_FILE", "MULTICLIP_BACKENDS"} {
		t.Setenv(key, "")
	}
	return tempDir
}

func TestLoadDefaults(t *testing.T) {
	tempDir := withTempHome(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.StorePath != filepath.Join(tempDir, ".multiclip.json") {
		t.Errorf("Expected StorePath in home, got %s", cfg.StorePath)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected Log.Level info, got %s", cfg.Log.Level)
	}
	if cfg.Hotkeys.AssignModifier != "ctrl" || cfg.Hotkeys.PasteModifier != "alt" {
		t.Errorf("Unexpected default modifiers: %+v", cfg.Hotkeys)
	}
	if cfg.Clipboard.Timeout != 2*time.Second {
		t.Errorf("Expected clipboard timeout 2s, got %v", cfg.Clipboard.Timeout)
	}
	if cfg.Store.LockTimeout != 2*time.Second {
		t.Errorf("Expected lock timeout 2s, got %v", cfg.Store.LockTimeout)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "config.yaml")); !os.IsNotExist(err) {
		t.Errorf("Load() must not create a config file")
	}
}

func TestLoadFile(t *testing.T) {
	tempDir := withTempHome(t)
	configPath := filepath.Join(tempDir, "custom.yaml")

	content := `store_path: ~/slots.json
log:
  level: debug
hotkeys:
  assign_modifier: super
clipboard:
  backends: [xsel, atotto]
  timeout: 500ms
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.StorePath != filepath.Join(tempDir, "slots.json") {
		t.Errorf("Expected expanded store path, got %s", cfg.StorePath)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected Log.Level debug, got %s", cfg.Log.Level)
	}
	if cfg.Hotkeys.AssignModifier != "super" {
		t.Errorf("Expected assign modifier super, got %s", cfg.Hotkeys.AssignModifier)
	}
	// Fields absent from the file keep their defaults
	if cfg.Hotkeys.PasteModifier != "alt" {
		t.Errorf("Expected paste modifier alt, got %s", cfg.Hotkeys.PasteModifier)
	}
	if cfg.Log.MaxLogFiles != 5 {
		t.Errorf("Expected MaxLogFiles 5, got %d", cfg.Log.MaxLogFiles)
	}
	if !reflect.DeepEqual(cfg.Clipboard.Backends, []string{"xsel", "atotto"}) {
		t.Errorf("Unexpected backends: %v", cfg.Clipboard.Backends)
	}
	if cfg.Clipboard.Timeout != 500*time.Millisecond {
		t.Errorf("Expected timeout 500ms, got %v", cfg.Clipboard.Timeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tempDir := withTempHome(t)
	t.Setenv("MULTICLIP_STORE", filepath.Join(tempDir, "env.json"))
	t.Setenv("MULTICLIP_LOG_LEVEL", "warn")
	t.Setenv("MULTICLIP_LOG_FILE", "~/multiclip.log")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.StorePath != filepath.Join(tempDir, "env.json") {
		t.Errorf("Expected env store path, got %s", cfg.StorePath)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected Log.Level warn, got %s", cfg.Log.Level)
	}
	if cfg.Log.File != filepath.Join(tempDir, "multiclip.log") {
		t.Errorf("Expected expanded log file, got %s", cfg.Log.File)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	tempDir := withTempHome(t)
	configPath := filepath.Join(tempDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("log: [unterminated"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected parse error")
	}
}

func TestValidate(t *testing.T) {
	withTempHome(t)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"equal modifiers", func(c *Config) { c.Hotkeys.PasteModifier = "control" }, "must differ"},
		{"unknown modifier", func(c *Config) { c.Hotkeys.AssignModifier = "hyper" }, "assign_modifier"},
		{"unknown backend", func(c *Config) { c.Clipboard.Backends = []string{"xclip", "pbpaste"} }, "unknown backend"},
		{"zero timeout", func(c *Config) { c.Clipboard.Timeout = 0 }, "clipboard.timeout"},
		{"negative lock timeout", func(c *Config) { c.Store.LockTimeout = -time.Second }, "lock_timeout"},
		{"empty store", func(c *Config) { c.StorePath = " " }, "store_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	tempDir := withTempHome(t)
	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Log.Level = "debug"
	cfg.Clipboard.Backends = []string{"wl-clipboard"}
	cfg.Clipboard.Timeout = 3 * time.Second

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("Loaded config differs:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestModifiers(t *testing.T) {
	withTempHome(t)

	cfg := DefaultConfig()
	cfg.Hotkeys.AssignModifier = "<shift>"
	assign, paste, err := cfg.Modifiers()
	if err != nil {
		t.Fatalf("Modifiers() failed: %v", err)
	}
	if assign != "shift" || paste != "alt" {
		t.Errorf("Modifiers() = %s, %s", assign, paste)
	}
}
