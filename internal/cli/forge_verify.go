package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/notes"
	"github.com/relnotes-tools/relnotes/internal/output"
	"github.com/relnotes-tools/relnotes/internal/progress"
)

var forgeVerifyAll bool

var forgeVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify referenced issue numbers exist",
	Long: `Verify that every :gh: issue number referenced in the unreleased
fragment refers to an existing issue or pull request on the code host.
Numbers are checked in one concurrent batch.

Exit code 1 means at least one referenced issue does not exist.`,
	Example: `  relnotes forge verify
  relnotes forge verify --all   # include archived releases`,
	Args: cobra.NoArgs,
	RunE: runForgeVerify,
}

func init() {
	forgeCmd.AddCommand(forgeVerifyCmd)
	forgeVerifyCmd.Flags().BoolVar(&forgeVerifyAll, "all", false, "also verify issues in archived releases")
}

func runForgeVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := forgeClient(cfg)
	if err != nil {
		return err
	}

	var docs []*notes.Document
	if forgeVerifyAll {
		index, err := scanChanges(cfg)
		if err != nil {
			return err
		}
		for _, path := range fragmentPaths(index) {
			doc, err := notes.Load(path)
			if err != nil {
				return errs.Wrap(err, errs.Runtime)
			}
			docs = append(docs, doc)
		}
	} else {
		doc, err := loadDevelDocument(cfg)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	numbers := collectIssueNumbers(docs)
	out := cmd.OutOrStdout()
	if len(numbers) == 0 {
		fmt.Fprintln(out, "No issue references to verify.")
		return nil
	}

	display := progress.NewDisplay(out)
	display.Start(fmt.Sprintf("Verifying %d issues against %s...", len(numbers), client.Name()))
	exists, err := client.Verify(cmd.Context(), numbers)
	display.Stop()
	if err != nil {
		return errs.ForgeUnavailable(client.Name(), err)
	}

	missing := 0
	for _, doc := range docs {
		for _, entry := range doc.Entries() {
			for _, n := range entry.Issues {
				if exists[n] {
					continue
				}
				output.PrintFailure(out, fmt.Sprintf("%s:%d: issue #%d does not exist on %s", doc.Path, entry.Line, n, client.Name()))
				missing++
			}
		}
	}
	if missing > 0 {
		return NewExitError(ExitFindings)
	}
	output.PrintSuccess(out, fmt.Sprintf("All %d referenced issues exist on %s", len(numbers), client.Name()))
	return nil
}

// collectIssueNumbers gathers the distinct :gh: numbers across fragments.
func collectIssueNumbers(docs []*notes.Document) []int {
	seen := make(map[int]bool)
	for _, doc := range docs {
		for _, entry := range doc.Entries() {
			for _, n := range entry.Issues {
				seen[n] = true
			}
		}
	}
	numbers := make([]int, 0, len(seen))
	for n := range seen {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
