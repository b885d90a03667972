package cli

import (
	"github.com/spf13/cobra"
)

var forgeCmd = &cobra.Command{
	Use:   "forge",
	Short: "Check release notes against the code host",
	Long: `Commands that talk to the code host (GitHub or GitLab) configured
under forge in the project config. Private projects authenticate with
RELNOTES_FORGE_TOKEN, GITHUB_TOKEN, or GITLAB_TOKEN.`,
}

func init() {
	forgeCmd.GroupID = GroupIntegrations
	rootCmd.AddCommand(forgeCmd)
}
