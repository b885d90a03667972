package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/output"
)

var contributorsCmd = &cobra.Command{
	Use:     "contributors",
	Aliases: []string{"names"},
	Short:   "List and manage the contributor registry",
	Long: `List the contributor registry that attribution references resolve
against. Every ` + "`Name`_" + ` and :newcontrib:` + "`Name`" + ` in a fragment must
match a registered name exactly.

Subcommands register new contributors, verify attributions, and scan
the git history for commit authors missing from the registry.`,
	Example: `  relnotes contributors
  relnotes contributors add "Jane Doe" https://github.com/janedoe
  relnotes contributors check
  relnotes contributors scan`,
	Args: cobra.NoArgs,
	RunE: runContributorsList,
}

func init() {
	contributorsCmd.GroupID = GroupRegistries
	rootCmd.AddCommand(contributorsCmd)
}

func runContributorsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	widest := 0
	for _, entry := range reg.Entries() {
		if len(entry.Name) > widest {
			widest = len(entry.Name)
		}
	}
	for _, entry := range reg.Entries() {
		fmt.Fprintf(out, "%-*s  %s\n", widest, entry.Name, color.New(color.Faint).Sprintf("%s", entry.URL))
	}
	fmt.Fprintf(out, "\n%d contributors in %s\n", reg.Len(), cfg.NamesPath())

	for _, problem := range reg.Problems() {
		output.PrintWarning(out, fmt.Sprintf("line %d: %s", problem.Line, problem.Message))
	}
	return nil
}
