package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/contributors"
	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/gitutil"
	"github.com/relnotes-tools/relnotes/internal/output"
)

var scanMaxCommits int

var contributorsScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find commit authors missing from the registry",
	Long: `Walk the git history of the current repository and list commit
authors that are not in the contributor registry, most active first.

Authors whose git identity differs from their registered name can be
mapped with contributors.aliases in the project config. Bot accounts
are skipped.`,
	Example: `  relnotes contributors scan
  relnotes contributors scan --max-commits 500`,
	Args: cobra.NoArgs,
	RunE: runContributorsScan,
}

func init() {
	contributorsCmd.AddCommand(contributorsScanCmd)
	contributorsScanCmd.Flags().IntVar(&scanMaxCommits, "max-commits", 0, "bound the history walk (0 = full history)")
}

func runContributorsScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg, true)
	if err != nil {
		return err
	}
	if !gitutil.IsRepository(".") {
		return errs.GitNotRepository()
	}

	missing, err := contributors.ScanRepository(".", reg, contributors.ScanOptions{
		Aliases:    cfg.AliasMap(),
		MaxCommits: scanMaxCommits,
	})
	if err != nil {
		return errs.Wrap(err, errs.Runtime)
	}

	out := cmd.OutOrStdout()
	if len(missing) == 0 {
		output.PrintSuccess(out, "Every commit author is registered")
		return nil
	}

	for _, author := range missing {
		fmt.Fprintf(out, "%-30s %4d %s  last %s\n",
			author.Name, author.Commits, plural(author.Commits, "commit"), author.Last.Format("2006-01-02"))
	}
	fmt.Fprintf(out, "\n%d unregistered. Register with: relnotes contributors add <name> <url>\n", len(missing))
	fmt.Fprintf(out, "Alternate git identities can be mapped with contributors.aliases.\n")
	return NewExitError(ExitFindings)
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
