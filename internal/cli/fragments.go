package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/relnotes-tools/relnotes/internal/config"
	"github.com/relnotes-tools/relnotes/internal/contributors"
	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/notes"
)

// loadDevelDocument loads the unreleased fragment, mapping missing
// layout pieces to prerequisite errors with setup guidance.
func loadDevelDocument(cfg *config.Configuration) (*notes.Document, error) {
	if _, err := os.Stat(cfg.ChangesDir); err != nil {
		return nil, errs.MissingChangesDir(cfg.ChangesDir)
	}
	doc, err := notes.Load(cfg.DevelPath())
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errs.MissingDevelFragment(cfg.DevelPath())
		}
		return nil, errs.Wrap(err, errs.Runtime)
	}
	return doc, nil
}

// writeFragment re-emits a fragment to the given path.
func writeFragment(doc *notes.Document, path string) error {
	content, err := notes.RenderRSTString(doc)
	if err != nil {
		return fmt.Errorf("rendering fragment: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errs.FileNotWritable(path, err)
	}
	return nil
}

// loadRegistry loads the contributor registry. Required commands get a
// prerequisite error when the names file is absent; optional callers
// pass required=false and receive (nil, nil) instead.
func loadRegistry(cfg *config.Configuration, required bool) (*contributors.Registry, error) {
	reg, err := contributors.Load(cfg.NamesPath())
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			if required {
				return nil, errs.MissingNamesFile(cfg.NamesPath())
			}
			return nil, nil
		}
		return nil, errs.Wrap(err, errs.Runtime)
	}
	return reg, nil
}

// renderLinks builds the hyperlink configuration for markdown output,
// resolving contributor names through the registry when one is present.
func renderLinks(cfg *config.Configuration) notes.Links {
	links := cfg.RenderLinks()
	if reg, err := loadRegistry(cfg, false); err == nil && reg != nil {
		links.ContributorURL = func(name string) string {
			canonical, ok := reg.LookupFold(name)
			if !ok {
				return ""
			}
			url, _ := reg.Lookup(canonical)
			return url
		}
	}
	return links
}
