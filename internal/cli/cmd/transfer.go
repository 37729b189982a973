package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/berrythewa/multiclip/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newExportCmd creates the export command
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Write the slot store to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			if err := store.Export(args[0]); err != nil {
				return err
			}

			GetZapLogger().Debug("Exported store", zap.String("path", args[0]))
			fmt.Fprintln(cmd.OutOrStdout(), "Exported successfully")
			return nil
		},
	}
}

// newImportCmd creates the import command
func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace the slot store with the contents of a file",
		Long: `Replace the slot store with a previously exported file.

The file must be a JSON object. Missing "slots" or "history" keys default to
empty. A malformed file or one naming an unknown slot is rejected and the
current store is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			var imported types.Store
			if err := json.Unmarshal(data, &imported); err != nil {
				return fmt.Errorf("invalid import file %s: %w", args[0], err)
			}

			store, err := openStore()
			if err != nil {
				return err
			}

			if err := store.Replace(&imported); err != nil {
				return fmt.Errorf("import rejected: %w", err)
			}

			GetZapLogger().Debug("Imported store",
				zap.String("path", args[0]),
				zap.Int("slots", len(imported.Slots)),
				zap.Int("history", len(imported.History)))
			fmt.Fprintln(cmd.OutOrStdout(), "Imported successfully")
			return nil
		},
	}
}
