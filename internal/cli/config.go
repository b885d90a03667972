package cli

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage relnotes configuration",
	Long: `Manage relnotes configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (RELNOTES_*)
  2. Project config (.relnotes/config.yml)
  3. User config (~/.config/relnotes/config.yml)
  4. Built-in defaults`,
	Example: `  # List every known key with its default
  relnotes config keys

  # Set a value in the project config
  relnotes config set lint.jobs 8

  # Show where a value comes from
  relnotes config get changes_dir`,
}

func init() {
	configCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(configCmd)
}
