package cli

import (
	"fmt"
	"io"
	"os"

	cmdpkg "github.com/berrythewa/multiclip/internal/cli/cmd"
	"github.com/berrythewa/multiclip/internal/common"
	"github.com/berrythewa/multiclip/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootFlags holds the flags that apply to all commands
type rootFlags struct {
	cfgFile   string
	storePath string
	logLevel  string
	logFile   string
}

// NewRootCmd builds the multiclip command tree.
func NewRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "multiclip",
		Short: "Multi-slot clipboard manager",
		Long: `multiclip keeps 35 named clipboard slots (A-Z, 1-9).

Run "multiclip daemon" to register the global hotkeys: the assign modifier
plus a slot key copies the current selection into that slot, the paste
modifier plus a slot key puts the slot back on the clipboard. The other
commands inspect and manage the slot store directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			// daemon output is the log; everything else keeps stdout for results
			var out io.Writer = cmd.ErrOrStderr()
			if cmd.Name() == "daemon" {
				out = cmd.OutOrStdout()
			}

			logger, err := common.NewLogger(cfg.Log, out)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			logger.Debug("Configuration loaded",
				zap.String("store", cfg.StorePath),
				zap.String("log_level", cfg.Log.Level),
				zap.String("log_file", cfg.Log.File))

			cmdpkg.SetConfig(cfg, flags.cfgFile)
			cmdpkg.SetZapLogger(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = cmdpkg.GetZapLogger().Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.cfgFile, "config", "", "config file (default is <user config dir>/multiclip/config.yaml)")
	pf.StringVar(&flags.storePath, "store", "", "slot store file (default is ~/.multiclip.json)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFile, "log-file", "", "also write logs to this file, rotated by size")

	root.AddCommand(cmdpkg.GetCommands()...)
	return root
}

// loadConfig applies file, environment and flag settings in that order.
func loadConfig(flags rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flags.storePath != "" {
		cfg.StorePath = flags.storePath
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFile != "" {
		cfg.Log.File = flags.logFile
	}
	return cfg, nil
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetVersionInfo sets the version information used by the version command
func SetVersionInfo(version, buildTime, commit string) {
	cmdpkg.SetVersionInfo(version, buildTime, commit)
}
