package cmd

import (
	"fmt"
	"strings"

	"github.com/berrythewa/multiclip/internal/types"
	"github.com/berrythewa/multiclip/pkg/format"
	"github.com/spf13/cobra"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all slots with a preview of their content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			data := store.Load()
			out := cmd.OutOrStdout()
			if len(data.Slots) == 0 {
				fmt.Fprintln(out, "No slots yet.")
				return nil
			}

			for _, slot := range data.SortedSlots() {
				fmt.Fprintf(out, "%s: %s\n", slot, format.Preview(data.Slots[slot].Content, format.ListPreviewLen))
			}
			return nil
		},
	}
}

// newClearCmd creates the clear command
func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <slot>",
		Short: "Remove a slot",
		Long: `Remove a slot's content. History entries for the slot are kept.

Examples:
  multiclip clear A
  multiclip clear 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := types.ParseSlot(args[0])
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}

			existed, err := store.Clear(slot)
			if err != nil {
				return fmt.Errorf("failed to clear slot %s: %w", slot, err)
			}
			if !existed {
				return fmt.Errorf("slot %s not found", slot)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cleared slot %s\n", slot)
			return nil
		},
	}
}

// newShowCmd creates the show command
func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <slot>",
		Short: "Print a slot's full content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := types.ParseSlot(args[0])
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}

			value, ok := store.Get(slot)
			if !ok {
				return fmt.Errorf("slot %s is empty", slot)
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, value.Content)
			if !strings.HasSuffix(value.Content, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
