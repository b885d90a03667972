package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/markup"
	"github.com/relnotes-tools/relnotes/internal/notes"
)

var (
	viewLast  int
	viewPlain bool
)

var viewCmd = &cobra.Command{
	Use:   "view [version]",
	Short: "Show release notes in the terminal",
	Long: `Show release-note entries in the terminal with markup rendered for
reading: issue numbers as #1234, cross-references by their display
name, contributors by name.

Without arguments the unreleased fragment is shown. Pass a version to
show an archived release; "unreleased" and "devel" name the working
fragment explicitly.`,
	Example: `  relnotes view
  relnotes view 1.7
  relnotes view --last 20
  relnotes view unreleased --plain`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().IntVarP(&viewLast, "last", "n", 0, "entries shown per section (default from config)")
	viewCmd.Flags().BoolVar(&viewPlain, "plain", false, "plain output without colors")
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var doc *notes.Document
	if len(args) == 0 || args[0] == "unreleased" || args[0] == "devel" {
		doc, err = loadDevelDocument(cfg)
		if err != nil {
			return err
		}
	} else {
		index, err := scanChanges(cfg)
		if err != nil {
			return err
		}
		release, err := index.Find(args[0])
		if err != nil {
			var notFound *notes.VersionNotFoundError
			if stderrors.As(err, &notFound) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Version %q has no release notes.\n", args[0])
				if len(notFound.Available) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "Available versions: %s\n", strings.Join(notFound.Available, ", "))
				}
				return NewExitError(ExitInvalidArguments)
			}
			return err
		}
		doc, err = notes.Load(release.Path)
		if err != nil {
			return err
		}
	}

	limit := viewLast
	if limit <= 0 {
		limit = cfg.ViewLimit
	}
	renderDocument(cmd.OutOrStdout(), doc, limit, viewPlain)
	return nil
}

// renderDocument prints a fragment for terminal reading. Placeholder
// entries are dropped and each section is capped at limit entries.
func renderDocument(w io.Writer, doc *notes.Document, limit int, plain bool) {
	paint := func(fn func(format string, a ...interface{}) string, s string) string {
		if plain {
			return s
		}
		return fn("%s", s)
	}

	if doc.Title != nil {
		fmt.Fprintf(w, "%s\n\n", paint(color.New(color.Bold).Sprintf, doc.Title.Raw))
	}

	total, shown := 0, 0
	printed := false
	for _, section := range doc.Sections {
		entries := make([]*notes.Entry, 0, len(section.Entries))
		for _, entry := range section.Entries {
			if !entry.Placeholder {
				entries = append(entries, entry)
			}
		}
		total += len(entries)
		if len(entries) == 0 {
			continue
		}

		if printed {
			fmt.Fprintln(w)
		}
		printed = true
		fmt.Fprintf(w, "%s\n", paint(color.New(color.FgCyan, color.Bold).Sprintf, section.Heading))

		capped := entries
		if limit > 0 && len(capped) > limit {
			capped = capped[:limit]
		}
		shown += len(capped)
		for _, entry := range capped {
			fmt.Fprintf(w, "  - %s\n", renderEntryText(entry, plain))
		}
	}

	if total == 0 {
		fmt.Fprintln(w, "No release-note entries found.")
		return
	}
	if shown < total {
		fmt.Fprintf(w, "\n(%d of %d entries shown. Use --last %d to see all)\n", shown, total, total)
	}
}

// renderEntryText flattens an entry's markup for the terminal.
func renderEntryText(entry *notes.Entry, plain bool) string {
	if entry.Tokens == nil {
		return markup.Strip(entry.Text)
	}

	paint := func(fn func(format string, a ...interface{}) string, s string) string {
		if plain {
			return s
		}
		return fn("%s", s)
	}

	var b strings.Builder
	for _, token := range entry.Tokens {
		switch token.Kind {
		case markup.KindRole:
			switch {
			case token.Name == "gh":
				b.WriteString(paint(color.New(color.FgYellow).Sprintf, token.DisplayText()))
			case token.Name == "newcontrib":
				b.WriteString(paint(color.New(color.FgGreen).Sprintf, token.DisplayText()))
			case markup.CrossRefRoles[token.Name]:
				b.WriteString(paint(color.New(color.FgCyan).Sprintf, token.DisplayText()))
			default:
				b.WriteString(token.DisplayText())
			}
		case markup.KindNamedRef:
			b.WriteString(paint(color.New(color.FgGreen).Sprintf, token.DisplayText()))
		default:
			b.WriteString(token.DisplayText())
		}
	}
	return b.String()
}
