package cli

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/config"
	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/gitutil"
	"github.com/relnotes-tools/relnotes/internal/notes"
)

var (
	addIssues          []int
	addAuthors         []string
	addNewContributors []string
	addNoAttribution   bool
)

var addCmd = &cobra.Command{
	Use:   "add <section> <text>",
	Short: "Record a new entry in the unreleased fragment",
	Long: `Record a new release-note entry at the top of a section of the
unreleased fragment.

The section is one of enhancements, bugs, or api. The entry text may
carry inline markup: cross-reference roles such as :func:` + "`pkg.load`" + `,
literals in double backticks, and so on. Issue numbers and authors given
as flags are appended as the standard attribution tail, for example
"(:gh:` + "`1234`" + ` by ` + "`Jane Doe`_" + `)".

Without --author or --new-contributor the entry is credited to the git
user.name of the current repository.`,
	Example: `  relnotes add bugs "Fix reading of truncated files" --issue 1234
  relnotes add enhancements "Speed up annotation lookup" -i 1201 -a "Jane Doe"
  relnotes add api "Deprecate the copy parameter" --new-contributor "New Person"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAdd,
}

func init() {
	addCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().IntSliceVarP(&addIssues, "issue", "i", nil, "issue or PR number to credit (repeatable)")
	addCmd.Flags().StringSliceVarP(&addAuthors, "author", "a", nil, "registered contributor to credit (repeatable)")
	addCmd.Flags().StringSliceVar(&addNewContributors, "new-contributor", nil, "first-time contributor to credit (repeatable)")
	addCmd.Flags().BoolVar(&addNoAttribution, "no-attribution", false, "record the entry without an attribution tail")
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	kind, err := parseSection(args[0])
	if err != nil {
		return err
	}

	spec := notes.EntrySpec{
		Text:            strings.Join(args[1:], " "),
		Issues:          addIssues,
		Authors:         addAuthors,
		NewContributors: addNewContributors,
	}
	if addNoAttribution {
		if len(addIssues)+len(addAuthors)+len(addNewContributors) > 0 {
			return errs.InvalidFlagCombination("--no-attribution with --issue/--author/--new-contributor",
				"attribution flags have no effect when the tail is suppressed")
		}
	} else if len(spec.Authors) == 0 && len(spec.NewContributors) == 0 {
		identity, err := gitutil.UserIdentity(".")
		if err != nil {
			log.Warnf("No author credited: %v. Pass --author or --no-attribution.", err)
		} else {
			spec.Authors = []string{identity.Name}
		}
	}

	warnUnregisteredAuthors(cfg, spec)

	text, err := notes.ComposeEntry(spec)
	if err != nil {
		return errs.NewArgumentError(err.Error())
	}

	doc, err := loadDevelDocument(cfg)
	if err != nil {
		return err
	}
	if _, err := doc.Insert(kind, text); err != nil {
		return errs.NewArgumentError(err.Error(),
			"Check backticks and role markup in the entry text")
	}
	if err := writeFragment(doc, cfg.DevelPath()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added to %s in %s\n", kind.Title(), cfg.DevelPath())
	return nil
}

// sectionAliases maps accepted section spellings to canonical kinds.
var sectionAliases = map[string]notes.SectionKind{
	"enhancements": notes.SectionEnhancements,
	"enhancement":  notes.SectionEnhancements,
	"features":     notes.SectionEnhancements,
	"feature":      notes.SectionEnhancements,
	"bugs":         notes.SectionBugs,
	"bug":          notes.SectionBugs,
	"bugfix":       notes.SectionBugs,
	"fix":          notes.SectionBugs,
	"api":          notes.SectionAPIChanges,
	"api-changes":  notes.SectionAPIChanges,
	"api-change":   notes.SectionAPIChanges,
}

func parseSection(arg string) (notes.SectionKind, error) {
	kind, ok := sectionAliases[strings.ToLower(strings.TrimSpace(arg))]
	if !ok {
		return notes.SectionUnknown, errs.UnknownSection(arg)
	}
	return kind, nil
}

// warnUnregisteredAuthors flags credited names the registry does not
// know, so the author can fix the registry before lint fails.
func warnUnregisteredAuthors(cfg *config.Configuration, spec notes.EntrySpec) {
	reg, err := loadRegistry(cfg, false)
	if err != nil || reg == nil {
		return
	}
	names := append(append([]string{}, spec.Authors...), spec.NewContributors...)
	for _, name := range names {
		if _, ok := reg.LookupFold(name); !ok {
			log.Warnf("%q is not in the contributor registry; lint will flag this entry. Register with: relnotes contributors add %q <url>", name, name)
		}
	}
}
