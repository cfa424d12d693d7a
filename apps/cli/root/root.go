package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the accountflow admin CLI. Subcommands
// (account, event) are attached here.
var rootCmd = &cobra.Command{
	Use:           "accountflow",
	Short:         "Accountflow admin CLI",
	Long:          "Administrative utilities for the tenant account lifecycle tracker (record management, event replay).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
