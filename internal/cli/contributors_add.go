package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/relnotes-tools/relnotes/internal/errors"
)

var contributorsAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Register a contributor",
	Long: `Register a contributor in the names file so entries can credit them.

The name is inserted at its alphabetical position and must match the
spelling used in attributions exactly. The URL is where rendered
release notes link the name to, typically a code-host profile.`,
	Example: `  relnotes contributors add "Jane Doe" https://github.com/janedoe`,
	Args:    cobra.ExactArgs(2),
	RunE:    runContributorsAdd,
}

func init() {
	contributorsCmd.AddCommand(contributorsAddCmd)
}

func runContributorsAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg, true)
	if err != nil {
		return err
	}

	name, url := args[0], args[1]
	if err := reg.Add(name, url); err != nil {
		return errs.NewArgumentError(err.Error())
	}
	if err := reg.Save(cfg.NamesPath()); err != nil {
		return errs.FileNotWritable(cfg.NamesPath(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered %s → %s\n", name, url)
	return nil
}
