package cmd

import (
	"github.com/spf13/cobra"
)

// GetCommands returns all commands for registration
func GetCommands() []*cobra.Command {
	return []*cobra.Command{
		newListCmd(),
		newClearCmd(),
		newShowCmd(),
		newExportCmd(),
		newImportCmd(),
		newHistoryCmd(),
		newDaemonCmd(),
		newBindingsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	}
}
