package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/notes"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the rendered markdown matches the unreleased fragment",
	Long: `Verify that the committed rendered_file matches what 'relnotes sync'
would produce from the unreleased fragment right now.

Intended for CI: a stale rendered page exits with code 1 and prints
the command that fixes it.`,
	Example: `  relnotes check`,
	Args:    cobra.NoArgs,
	RunE:    runCheck,
}

func init() {
	checkCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	started := time.Now()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.RenderedFile == "" {
		return errs.NewConfigError("rendered_file is not configured",
			"Set rendered_file in .relnotes/config.yml, e.g. doc/changes/devel.md")
	}

	doc, err := loadDevelDocument(cfg)
	if err != nil {
		return err
	}
	want, err := notes.RenderMarkdownString(doc, renderLinks(cfg))
	if err != nil {
		return errs.Wrap(err, errs.Runtime)
	}

	out := cmd.OutOrStdout()
	got, err := os.ReadFile(cfg.RenderedFile)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintf(out, "✗ %s does not exist yet\n", cfg.RenderedFile)
	case err != nil:
		return errs.Wrap(err, errs.Runtime)
	case bytes.Equal(got, []byte(want)):
		fmt.Fprintf(out, "✓ %s is in sync with %s\n", cfg.RenderedFile, cfg.DevelPath())
		logHistory(cfg, "check", cfg.RenderedFile, ExitSuccess, 0, started)
		return nil
	default:
		fmt.Fprintf(out, "✗ %s is out of sync with %s\n", cfg.RenderedFile, cfg.DevelPath())
	}

	fmt.Fprintf(out, "\nTo fix, run:\n  relnotes sync\n")
	logHistory(cfg, "check", cfg.RenderedFile, ExitFindings, 1, started)
	return NewExitError(ExitFindings)
}
