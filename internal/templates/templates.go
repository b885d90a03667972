// Package templates embeds the scaffolding files written by relnotes
// init and release: the starter working fragment, the contributor
// registry seed, and the project configuration.
package templates

import (
	"embed"
	"strings"
)

// templateFS embeds the scaffolding templates stored alongside this
// package.
//
//go:embed all:*.tmpl all:*.inc
var templateFS embed.FS

// Names returns the embedded template names, extension included.
func Names() ([]string, error) {
	entries, err := templateFS.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Read returns the raw bytes of an embedded template.
func Read(name string) ([]byte, error) {
	return templateFS.ReadFile(name)
}

// IsTemplate reports whether the name refers to a renderable template
// rather than a verbatim seed file.
func IsTemplate(name string) bool {
	return strings.HasSuffix(name, ".tmpl")
}
