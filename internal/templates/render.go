package templates

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// FragmentContext carries the fields interpolated into fragment
// templates.
type FragmentContext struct {
	// Version is the in-development version the fragment collects
	// entries for, without a leading "v".
	Version string
}

// Title returns the unreleased version heading.
func (c FragmentContext) Title() string {
	return fmt.Sprintf("Version %s (unreleased)", c.Version)
}

// TitleUnderline returns the punctuation underline sized to Title.
func (c FragmentContext) TitleUnderline() string {
	return strings.Repeat("-", len(c.Title()))
}

// ConfigContext carries the fields interpolated into the project
// configuration template.
type ConfigContext struct {
	ChangesDir string
	DevelFile  string
	NamesFile  string
	DocsURL    string
	RepoURL    string
}

// Render executes an embedded template with the provided context.
func Render(name string, ctx any) ([]byte, error) {
	content, err := Read(name)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// DevelFragment renders the starter working fragment for a version.
func DevelFragment(version string) ([]byte, error) {
	return Render("devel.inc.tmpl", FragmentContext{Version: version})
}

// ProjectConfig renders the starter project configuration.
func ProjectConfig(ctx ConfigContext) ([]byte, error) {
	return Render("config.yml.tmpl", ctx)
}

// ContributorSeed returns the starter contributor registry.
func ContributorSeed() ([]byte, error) {
	return Read("names.inc")
}
