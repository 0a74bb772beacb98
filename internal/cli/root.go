// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ufmigrate",
		Short: "ufmigrate - migrate legacy Umbraco Forms data to the new forms store",
		Long: `ufmigrate copies form definitions, pre-value sources, workflows and submitted
records from the legacy (Contour) SQL Server schema into the new forms store.
It runs once, top to bottom, and repairs known data defects in the legacy
database before reading it.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(NewMigrateCmd(), NewRepairCmd())

	return rootCmd
}
