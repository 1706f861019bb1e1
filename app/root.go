// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hearth",
	Short: "Hearth is a group-collaboration backend",
	Long: `Hearth is a group-collaboration backend providing shared calendars,
albums, lists and chat channels, with group-scoped authorization over
member, admin and creator permission tiers.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
