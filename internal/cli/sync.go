package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/notes"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the rendered markdown from the unreleased fragment",
	Long: `Render the unreleased fragment as a hyperlinked markdown page and
write it to the configured rendered_file.

Cross-references link into the documentation site, issue numbers link
to the code host, and contributor names link to their registry URLs.
The output is deterministic, so the file only changes when the
fragment does. 'relnotes check' verifies the two stay in step.`,
	Example: `  relnotes sync`,
	Args:    cobra.NoArgs,
	RunE:    runSync,
}

func init() {
	syncCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
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
	content, err := notes.RenderMarkdownString(doc, renderLinks(cfg))
	if err != nil {
		return errs.Wrap(err, errs.Runtime)
	}

	if dir := filepath.Dir(cfg.RenderedFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.FileNotWritable(cfg.RenderedFile, err)
		}
	}
	if err := os.WriteFile(cfg.RenderedFile, []byte(content), 0o644); err != nil {
		return errs.FileNotWritable(cfg.RenderedFile, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Synced %s → %s\n", cfg.DevelPath(), cfg.RenderedFile)
	logHistory(cfg, "sync", cfg.RenderedFile, ExitSuccess, 0, started)
	return nil
}
