package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/notes"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render [fragment]",
	Short: "Render a fragment as hyperlinked markdown",
	Long: `Render a release-note fragment as a hyperlinked markdown page.

Without an argument the unreleased fragment is rendered. Cross-references
link into the documentation site, issue numbers link to the code host,
and contributor names link to their registry URLs. Output goes to stdout
unless --out names a file; 'relnotes sync' is the shorthand that renders
the unreleased fragment to the configured rendered_file.`,
	Example: `  relnotes render
  relnotes render doc/changes/v1.7.inc
  relnotes render --out build/notes.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "write markdown to a file instead of stdout")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var doc *notes.Document
	if len(args) == 1 {
		doc, err = notes.Load(args[0])
		if err != nil {
			return errs.Wrap(err, errs.Runtime)
		}
	} else {
		doc, err = loadDevelDocument(cfg)
		if err != nil {
			return err
		}
	}

	content, err := notes.RenderMarkdownString(doc, renderLinks(cfg))
	if err != nil {
		return errs.Wrap(err, errs.Runtime)
	}

	if renderOut == "" {
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}
	if dir := filepath.Dir(renderOut); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.FileNotWritable(renderOut, err)
		}
	}
	if err := os.WriteFile(renderOut, []byte(content), 0o644); err != nil {
		return errs.FileNotWritable(renderOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Rendered %s → %s\n", doc.Path, renderOut)
	return nil
}
