// Package cli implements the relnotes command tree.
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
	"github.com/relnotes-tools/relnotes/internal/gitutil"
	"github.com/relnotes-tools/relnotes/internal/history"
)

// Command group IDs, in help-listing order.
const (
	GroupGettingStarted = "getting-started"
	GroupChangelog      = "changelog"
	GroupRegistries     = "registries"
	GroupIntegrations   = "integrations"
	GroupConfiguration  = "configuration"
)

var (
	configFlag     string
	changesDirFlag string
	offlineFlag    bool
	debugFlag      bool
	verboseFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "relnotes",
	Short: "Maintain attributed, cross-referenced release notes",
	Long: `relnotes maintains the release notes of a documented library as fragment
files: one unreleased fragment that entries are prepended to, plus one
archived fragment per released version.

Entries are single bullets that may reference documented symbols with
roles such as :func:` + "`pkg.load`" + `, credit issues with :gh:` + "`1234`" + `, and
credit contributors registered in the names file. 'relnotes lint'
verifies every reference resolves and entries stay newest-first;
'relnotes release' rolls the unreleased fragment into a versioned
archive and resets it for the next cycle.`,
	Example: `  # Scaffold the changelog layout in the current project
  relnotes init

  # Record a bug fix with attribution
  relnotes add bugs "Fix reading of truncated files" --issue 1234 --author "Jane Doe"

  # Verify the fragments, then refresh the rendered page
  relnotes lint
  relnotes sync

  # Roll the unreleased notes into version 1.8.0
  relnotes release 1.8.0`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupGettingStarted, Title: "Getting Started:"},
		&cobra.Group{ID: GroupChangelog, Title: "Changelog:"},
		&cobra.Group{ID: GroupRegistries, Title: "Registries:"},
		&cobra.Group{ID: GroupIntegrations, Title: "Integrations:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"path to project config file (default: .relnotes/config.yml)")
	rootCmd.PersistentFlags().StringVar(&changesDirFlag, "changes-dir", "",
		"override the changes directory")
	rootCmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false,
		"disable network access; use cached inventories and skip forge checks")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable verbose output")

	// Flag parse failures are argument errors, not runtime failures.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: ExitInvalidArguments, Err: err}
	})
}

// Execute runs the command tree and reports any failure on stderr. The
// returned error feeds ExitCodeFor in main.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if stderrors.As(err, &exitErr) && exitErr.Silent() {
		// The command already printed its diagnostics.
		return err
	}
	if cliErr := errs.AsCLIError(err); cliErr != nil {
		errs.FprintError(os.Stderr, cliErr)
		return err
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}

// ExitCodeFor maps an Execute error to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}
	if cliErr := errs.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case errs.Argument, errs.Configuration:
			return ExitInvalidArguments
		case errs.Prerequisite:
			return ExitMissingPrerequisites
		case errs.Network, errs.Runtime:
			return ExitRuntimeFailure
		}
	}
	return ExitRuntimeFailure
}

func configureLogging() {
	log.SetOutput(os.Stderr)
	switch {
	case debugFlag:
		log.SetLevel(log.DebugLevel)
		gitutil.SetDebugLogger(log.Debugf)
	case verboseFlag:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}
}

// loadConfig resolves the effective configuration for a command run,
// applying the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	if configFlag != "" {
		if _, err := os.Stat(configFlag); err != nil {
			return nil, errs.ConfigFileNotFound(configFlag)
		}
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: configFlag,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, errs.ConfigLoadFailed(err)
	}

	if changesDirFlag != "" {
		cfg.ChangesDir = changesDirFlag
	}
	if offlineFlag {
		cfg.Offline = true
	}
	return cfg, nil
}

// logHistory records a finished command run in the state-dir run log.
// Failures are reported as warnings and never fail the command.
func logHistory(cfg *config.Configuration, command, target string, exitCode, findings int, started time.Time) {
	writer := history.NewWriter(cfg.StateDir, cfg.MaxHistoryEntries)
	writer.LogEntry(history.HistoryEntry{
		Timestamp: time.Now(),
		Command:   command,
		Target:    target,
		ExitCode:  exitCode,
		Duration:  time.Since(started).Round(time.Millisecond).String(),
		Findings:  findings,
	})
}
