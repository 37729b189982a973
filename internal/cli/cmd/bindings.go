package cmd

import (
	"fmt"

	"github.com/berrythewa/multiclip/internal/types"
	"github.com/spf13/cobra"
)

// newBindingsCmd creates the bindings command
func newBindingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bindings",
		Short: "Print the hotkeys the daemon registers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := newRouter()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, slot := range types.AllSlots() {
				assign, paste := router.Combos(slot)
				fmt.Fprintf(out, "%s: assign %s | paste %s\n", slot, assign, paste)
			}
			return nil
		},
	}
}
