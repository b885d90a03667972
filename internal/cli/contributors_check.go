package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/notes"
	"github.com/relnotes-tools/relnotes/internal/output"
)

var contributorsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every credited contributor is registered",
	Long: `Verify that every contributor credited in a fragment resolves in the
registry, and that the registry itself is well formed (no duplicate
names, no malformed target lines).

Exit code 1 means unresolved attributions or registry defects were
found.`,
	Example: `  relnotes contributors check`,
	Args:    cobra.NoArgs,
	RunE:    runContributorsCheck,
}

func init() {
	contributorsCmd.AddCommand(contributorsCheckCmd)
}

func runContributorsCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg, true)
	if err != nil {
		return err
	}
	index, err := scanChanges(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	problems := 0
	for _, problem := range reg.Problems() {
		output.PrintFailure(out, fmt.Sprintf("%s:%d: %s", cfg.NamesPath(), problem.Line, problem.Message))
		problems++
	}

	for _, path := range fragmentPaths(index) {
		doc, err := notes.Load(path)
		if err != nil {
			output.PrintFailure(out, fmt.Sprintf("%s: %v", path, err))
			problems++
			continue
		}
		for _, entry := range doc.Entries() {
			for _, author := range entry.Authors {
				if _, ok := reg.Lookup(author.Name); ok {
					continue
				}
				hint := ""
				if _, ok := reg.LookupFold(author.Name); ok {
					hint = " (case mismatch with a registered name)"
				}
				output.PrintFailure(out, fmt.Sprintf("%s:%d: contributor %q is not registered%s", path, entry.Line, author.Name, hint))
				problems++
			}
		}
	}

	if problems > 0 {
		fmt.Fprintf(out, "\n%d %s. Register missing names with: relnotes contributors add <name> <url>\n", problems, plural(problems, "problem"))
		return NewExitError(ExitFindings)
	}
	output.PrintSuccess(out, fmt.Sprintf("All credited contributors are registered (%d names)", reg.Len()))
	return nil
}
