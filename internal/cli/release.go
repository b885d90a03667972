package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/notes"
	"github.com/relnotes-tools/relnotes/internal/templates"
)

// archiveExt is the extension archived release fragments are written with.
const archiveExt = "inc"

var (
	releaseDate   string
	releaseNext   string
	releaseDryRun bool
)

var releaseCmd = &cobra.Command{
	Use:   "release <version>",
	Short: "Roll the unreleased fragment into a versioned archive",
	Long: `Archive the unreleased fragment as the release notes for a version.

Placeholder entries and empty sections are dropped, the title gets the
version and release date, and the anchor is renamed so the archived
release stays linkable. The unreleased fragment is then reset to empty
sections for the next development cycle.`,
	Example: `  relnotes release 1.8.0
  relnotes release 1.8.1 --date 2026-09-01
  relnotes release 2.0.0 --next 2.1
  relnotes release 1.8.0 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runRelease,
}

func init() {
	releaseCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(releaseCmd)
	releaseCmd.Flags().StringVar(&releaseDate, "date", "", "release date as YYYY-MM-DD (default today)")
	releaseCmd.Flags().StringVar(&releaseNext, "next", "", "version label for the reset fragment (default: next minor)")
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "show what would be written without writing it")
}

func runRelease(cmd *cobra.Command, args []string) error {
	started := time.Now()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	version, err := semver.NewVersion(notes.NormalizeVersion(args[0]))
	if err != nil {
		return errs.InvalidVersion(args[0], err)
	}

	date := time.Now()
	if releaseDate != "" {
		date, err = time.Parse("2006-01-02", releaseDate)
		if err != nil {
			return errs.NewArgumentError(fmt.Sprintf("invalid --date %q: expected YYYY-MM-DD", releaseDate))
		}
	}

	doc, err := loadDevelDocument(cfg)
	if err != nil {
		return err
	}
	index, err := scanChanges(cfg)
	if err != nil {
		return err
	}
	if existing, err := index.Find(args[0]); err == nil {
		return errs.NewArgumentError(
			fmt.Sprintf("version %s already has release notes at %s", version, existing.Path),
			"Pick a version that has not been released yet")
	}
	if latest := index.Latest(); latest != nil && !version.GreaterThan(latest.Version) {
		log.Warnf("Version %s is not newer than the latest archived release %s.", version, latest.Version)
	}

	released, err := notes.Rollover(doc, version, date)
	if err != nil {
		if stderrors.Is(err, notes.ErrNoChanges) {
			return errs.NothingToRelease(cfg.DevelPath())
		}
		return errs.Wrap(err, errs.Runtime)
	}

	archivePath := filepath.Join(cfg.ChangesDir, notes.ReleaseFileName(version, archiveExt))
	nextLabel := releaseNext
	if nextLabel == "" {
		nextLabel = fmt.Sprintf("%d.%d", version.Major(), version.Minor()+1)
	}

	out := cmd.OutOrStdout()
	if releaseDryRun {
		fmt.Fprintf(out, "Would archive %d entries to %s\n", released.EntryCount(), archivePath)
		fmt.Fprintf(out, "Would reset %s for version %s\n", cfg.DevelPath(), nextLabel)
		return nil
	}

	if err := writeFragment(released, archivePath); err != nil {
		return err
	}
	fresh, err := templates.DevelFragment(nextLabel)
	if err != nil {
		return errs.Wrap(err, errs.Runtime)
	}
	if err := os.WriteFile(cfg.DevelPath(), fresh, 0o644); err != nil {
		return errs.FileNotWritable(cfg.DevelPath(), err)
	}

	fmt.Fprintf(out, "✓ Archived %d entries to %s\n", released.EntryCount(), archivePath)
	fmt.Fprintf(out, "✓ Reset %s for version %s\n", cfg.DevelPath(), nextLabel)
	logHistory(cfg, "release", version.String(), ExitSuccess, 0, started)
	return nil
}
