package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relnotes-tools/relnotes/internal/gitutil"
	"github.com/relnotes-tools/relnotes/internal/notes"
	"github.com/relnotes-tools/relnotes/internal/output"
)

var doctorJSON bool

// DoctorCheck is one environment check result.
type DoctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok, warn, or fail
	Detail string `json:"detail"`
}

// DoctorOutput is the JSON output structure for the doctor command.
type DoctorOutput struct {
	Checks   []DoctorCheck `json:"checks"`
	Warnings int           `json:"warnings"`
	Failures int           `json:"failures"`
}

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Aliases: []string{"status"},
	Short:   "Check the project setup for problems",
	Long: `Check that everything relnotes needs is in place: the changes
directory, a parseable unreleased fragment, the contributor registry,
and the optional inventory and forge integration.

Failures mean a required piece is missing; warnings mean an optional
integration is unconfigured or the rendered page is stale.`,
	Example: `  relnotes doctor
  relnotes doctor --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.GroupID = GroupGettingStarted
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report := &DoctorOutput{}
	add := func(name, status, detail string) {
		report.Checks = append(report.Checks, DoctorCheck{Name: name, Status: status, Detail: detail})
		switch status {
		case "warn":
			report.Warnings++
		case "fail":
			report.Failures++
		}
	}

	// Changes directory and unreleased fragment.
	var doc *notes.Document
	if _, err := os.Stat(cfg.ChangesDir); err != nil {
		add("changes directory", "fail", fmt.Sprintf("%s does not exist; run 'relnotes init'", cfg.ChangesDir))
	} else {
		add("changes directory", "ok", cfg.ChangesDir)
		doc, err = notes.Load(cfg.DevelPath())
		switch {
		case stderrors.Is(err, os.ErrNotExist):
			add("unreleased fragment", "fail", fmt.Sprintf("%s does not exist; run 'relnotes init'", cfg.DevelPath()))
		case err != nil:
			add("unreleased fragment", "fail", err.Error())
		default:
			add("unreleased fragment", "ok", fmt.Sprintf("%s (%d entries)", cfg.DevelPath(), doc.EntryCount()))
		}
	}

	// Contributor registry.
	reg, err := loadRegistry(cfg, false)
	switch {
	case err != nil:
		add("contributor registry", "fail", err.Error())
	case reg == nil:
		add("contributor registry", "fail", fmt.Sprintf("%s does not exist; run 'relnotes init'", cfg.NamesPath()))
	case len(reg.Problems()) > 0:
		add("contributor registry", "warn", fmt.Sprintf("%d registry problems; run 'relnotes contributors check'", len(reg.Problems())))
	default:
		add("contributor registry", "ok", fmt.Sprintf("%d names in %s", reg.Len(), cfg.NamesPath()))
	}

	// Symbol inventory. Doctor never touches the network; it reports
	// what lint would use.
	src := cfg.InventorySource(cfg.Offline)
	switch {
	case src.Path != "":
		if fileMissing(src.Path) {
			add("symbol inventory", "fail", fmt.Sprintf("inventory.path %s does not exist", src.Path))
		} else {
			add("symbol inventory", "ok", src.Path)
		}
	case src.URL != "":
		if fileMissing(src.CachePath) {
			add("symbol inventory", "warn", fmt.Sprintf("%s (no cache yet; run 'relnotes inventory fetch')", src.URL))
		} else {
			add("symbol inventory", "ok", fmt.Sprintf("%s (cached at %s)", src.URL, src.CachePath))
		}
	default:
		add("symbol inventory", "warn", "not configured; cross-reference checks are skipped")
	}

	// Git repository and identity.
	if !gitutil.IsRepository(".") {
		add("git repository", "warn", "not a git repository; author defaults and scan unavailable")
	} else if identity, err := gitutil.UserIdentity("."); err != nil {
		add("git repository", "warn", err.Error())
	} else {
		add("git repository", "ok", fmt.Sprintf("identity %s <%s>", identity.Name, identity.Email))
	}

	// Forge integration.
	if opts, err := cfg.ForgeOptions(); err != nil {
		add("forge", "warn", "not configured; issue verification unavailable")
	} else {
		add("forge", "ok", fmt.Sprintf("%s project %s", opts.Kind, opts.Project))
	}

	// Rendered page freshness.
	if cfg.RenderedFile != "" && doc != nil {
		want, err := notes.RenderMarkdownString(doc, renderLinks(cfg))
		got, readErr := os.ReadFile(cfg.RenderedFile)
		switch {
		case err != nil:
			add("rendered page", "warn", err.Error())
		case os.IsNotExist(readErr):
			add("rendered page", "warn", fmt.Sprintf("%s does not exist; run 'relnotes sync'", cfg.RenderedFile))
		case readErr != nil:
			add("rendered page", "warn", readErr.Error())
		case string(got) != want:
			add("rendered page", "warn", fmt.Sprintf("%s is stale; run 'relnotes sync'", cfg.RenderedFile))
		default:
			add("rendered page", "ok", fmt.Sprintf("%s is in sync", cfg.RenderedFile))
		}
	}

	out := cmd.OutOrStdout()
	if doctorJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return err
		}
	} else {
		for _, check := range report.Checks {
			line := fmt.Sprintf("%s: %s", check.Name, check.Detail)
			switch check.Status {
			case "ok":
				output.PrintSuccess(out, line)
			case "warn":
				output.PrintWarning(out, line)
			default:
				output.PrintFailure(out, line)
			}
		}
		if report.Failures > 0 {
			fmt.Fprintf(out, "\n%d failures, %d warnings.\n", report.Failures, report.Warnings)
		}
	}

	if report.Failures > 0 {
		return NewExitError(ExitMissingPrerequisites)
	}
	return nil
}
