// Package lint validates release-note fragments: structural rules,
// markup rules, cross-reference resolution against the symbol
// inventory, contributor resolution against the registry, and
// newest-on-top ordering.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Severity classifies a finding.
type Severity int

const (
	// SeverityWarning findings do not fail the run unless strict mode
	// promotes them.
	SeverityWarning Severity = iota
	// SeverityError findings fail the run.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// MarshalJSON encodes the severity as its string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its string form.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	switch text {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Finding is one rule violation.
type Finding struct {
	Path     string   `json:"path"`
	Line     int      `json:"line,omitempty"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	// Remediation is an optional actionable hint shown under the finding.
	Remediation string `json:"remediation,omitempty"`
}

// Report is the outcome of one lint run.
type Report struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
	FilesChecked int       `json:"files_checked"`
	Errors       int       `json:"errors"`
	Warnings     int       `json:"warnings"`
	Findings     []Finding `json:"findings"`
}

// NewReport creates a report with a fresh run ID.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Add appends findings and updates the severity counts.
func (r *Report) Add(findings ...Finding) {
	for _, f := range findings {
		r.Findings = append(r.Findings, f)
		if f.Severity == SeverityError {
			r.Errors++
		} else {
			r.Warnings++
		}
	}
}

// Sort orders findings by path, then line, then rule.
func (r *Report) Sort() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}

// HasErrors reports whether any error-severity findings were recorded.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// HasFindings reports whether anything at all was recorded.
func (r *Report) HasFindings() bool {
	return len(r.Findings) > 0
}

// WriteJSON writes the report as indented JSON for CI consumers.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding lint report: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("writing lint report: %w", err)
	}
	return nil
}

// WriteText writes the human-readable report.
func (r *Report) WriteText(w io.Writer) error {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, f := range r.Findings {
		severity := yellow(f.Severity.String())
		if f.Severity == SeverityError {
			severity = red(f.Severity.String())
		}

		location := f.Path
		if f.Line > 0 {
			location = fmt.Sprintf("%s:%d", f.Path, f.Line)
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", location, severity, dim(f.Rule), f.Message); err != nil {
			return fmt.Errorf("writing lint report: %w", err)
		}
		if f.Remediation != "" {
			if _, err := fmt.Fprintf(w, "    %s\n", f.Remediation); err != nil {
				return fmt.Errorf("writing lint report: %w", err)
			}
		}
	}

	var summary string
	switch {
	case len(r.Findings) == 0:
		summary = green("✓") + fmt.Sprintf(" %s clean", plural(r.FilesChecked, "file"))
	case r.Errors > 0:
		summary = red("✗") + fmt.Sprintf(" %s, %s across %s",
			plural(r.Errors, "error"), plural(r.Warnings, "warning"), plural(r.FilesChecked, "file"))
	default:
		summary = yellow("⚠") + fmt.Sprintf(" %s across %s",
			plural(r.Warnings, "warning"), plural(r.FilesChecked, "file"))
	}
	if len(r.Findings) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return fmt.Errorf("writing lint report: %w", err)
		}
	}
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return fmt.Errorf("writing lint report: %w", err)
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
