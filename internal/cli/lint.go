package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/config"
	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/forge"
	"github.com/relnotes-tools/relnotes/internal/inventory"
	"github.com/relnotes-tools/relnotes/internal/lint"
	"github.com/relnotes-tools/relnotes/internal/notes"
	"github.com/relnotes-tools/relnotes/internal/progress"
)

var (
	lintFormat string
	lintStrict bool
	lintJobs   int
	lintForge  bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [fragment...]",
	Short: "Check fragments for broken references and ordering",
	Long: `Check release-note fragments for problems that would ship broken
release notes:

  - malformed inline markup and unknown roles
  - cross-references that do not resolve in the symbol inventory
  - credited contributors missing from the registry
  - non-canonical section headings and underlines
  - entries out of newest-first order

Without arguments every fragment in the changes directory is checked.
With --forge each referenced issue number is also verified against the
code host. Exit code 1 means findings were reported; the fragments
themselves were readable.`,
	Example: `  relnotes lint
  relnotes lint doc/changes/devel.inc
  relnotes lint --strict --format json
  relnotes lint --forge`,
	Args: cobra.ArbitraryArgs,
	RunE: runLint,
}

func init() {
	lintCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().StringVar(&lintFormat, "format", "text", "output format: text or json")
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().IntVarP(&lintJobs, "jobs", "j", 0, "max concurrent fragment checks (default from config)")
	lintCmd.Flags().BoolVar(&lintForge, "forge", false, "verify issue numbers against the code host")
}

func runLint(cmd *cobra.Command, args []string) error {
	started := time.Now()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if lintFormat != "text" && lintFormat != "json" {
		return errs.NewArgumentError(fmt.Sprintf("unknown lint format %q", lintFormat),
			"Valid formats: text, json")
	}

	paths := args
	if len(paths) == 0 {
		index, err := scanChanges(cfg)
		if err != nil {
			return err
		}
		paths = fragmentPaths(index)
		if len(paths) == 0 {
			return errs.MissingDevelFragment(cfg.DevelPath())
		}
	}

	linter, err := buildLinter(cmd, cfg)
	if err != nil {
		return err
	}
	linter.Strict = lintStrict || cfg.Lint.Strict

	opts := []lint.RunnerOption{}
	if jobs := lintJobs; jobs > 0 {
		opts = append(opts, lint.WithJobs(jobs))
	} else if cfg.Lint.Jobs > 0 {
		opts = append(opts, lint.WithJobs(cfg.Lint.Jobs))
	}

	var display *progress.Display
	var client forge.Client
	if lintForge {
		client, err = forgeClient(cfg)
		if err != nil {
			return err
		}
		opts = append(opts, lint.WithIssueVerifier(client))
		display = progress.NewDisplay(cmd.OutOrStdout())
		display.Start(fmt.Sprintf("Verifying issue references against %s...", client.Name()))
	}

	runner := lint.NewRunner(linter, opts...)
	report, err := runner.Run(cmd.Context(), paths)
	display.Stop()
	if err != nil {
		logHistory(cfg, "lint", cfg.ChangesDir, ExitRuntimeFailure, 0, started)
		if client != nil {
			return errs.ForgeUnavailable(client.Name(), err)
		}
		return errs.WrapWithMessage(err, errs.Runtime, "lint run failed")
	}

	switch lintFormat {
	case "json":
		if err := report.WriteJSON(cmd.OutOrStdout()); err != nil {
			return errs.Wrap(err, errs.Runtime)
		}
	default:
		if err := report.WriteText(cmd.OutOrStdout()); err != nil {
			return errs.Wrap(err, errs.Runtime)
		}
	}

	code := ExitSuccess
	if report.HasErrors() {
		code = ExitFindings
	}
	logHistory(cfg, "lint", cfg.ChangesDir, code, len(report.Findings), started)
	if code != ExitSuccess {
		return NewExitError(code)
	}
	return nil
}

// scanChanges catalogs the changes directory, mapping a missing
// directory to a prerequisite error.
func scanChanges(cfg *config.Configuration) (*notes.Index, error) {
	index, err := notes.ScanDir(cfg.ChangesDir, cfg.DevelFile)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errs.MissingChangesDir(cfg.ChangesDir)
		}
		return nil, errs.Wrap(err, errs.Runtime)
	}
	return index, nil
}

// fragmentPaths lists every fragment in the index, working fragment first.
func fragmentPaths(index *notes.Index) []string {
	var paths []string
	if index.DevelPath != "" {
		paths = append(paths, index.DevelPath)
	}
	for _, release := range index.Releases {
		paths = append(paths, release.Path)
	}
	return paths
}

// buildLinter wires the linter to the symbol inventory and contributor
// registry. Either input may be absent; the corresponding rules are
// skipped with a note rather than failing the run.
func buildLinter(cmd *cobra.Command, cfg *config.Configuration) (*lint.Linter, error) {
	linter := &lint.Linter{}

	src := cfg.InventorySource(cfg.Offline)
	if src.Path == "" && src.URL == "" {
		log.Debug("No symbol inventory configured; cross-reference checks are skipped.")
	} else {
		inv, err := inventory.Resolve(cmd.Context(), src)
		if err != nil {
			if cfg.Offline {
				return nil, errs.InventoryCacheMissing(src.CachePath)
			}
			return nil, errs.InventoryUnavailable(inventorySourceName(src), err)
		}
		linter.Inventory = inv
	}

	reg, err := loadRegistry(cfg, false)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		log.Warnf("Contributor registry %s not found; contributor checks are skipped.", cfg.NamesPath())
	}
	linter.Contributors = reg

	return linter, nil
}

func inventorySourceName(src inventory.Source) string {
	if src.Path != "" {
		return src.Path
	}
	return src.URL
}

// forgeClient builds the issue-verification client from configuration,
// refusing when the run is offline.
func forgeClient(cfg *config.Configuration) (forge.Client, error) {
	if cfg.Offline {
		return nil, errs.OfflineForgeCheck()
	}
	opts, err := cfg.ForgeOptions()
	if err != nil {
		return nil, errs.ForgeNotConfigured()
	}
	client, err := forge.New(opts)
	if err != nil {
		return nil, errs.Wrap(err, errs.Configuration,
			"Set forge.kind and forge.project in .relnotes/config.yml")
	}
	return client, nil
}
