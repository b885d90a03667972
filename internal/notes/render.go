package notes

import (
	"fmt"
	"io"
	"strings"

	"github.com/relnotes-tools/relnotes/internal/markup"
)

// Links configures hyperlink generation for markdown rendering. Empty
// fields degrade gracefully to unlinked text.
type Links struct {
	// DocsURL is the documentation base URL; symbol cross-references link
	// to <DocsURL>/generated/<target>.html.
	DocsURL string
	// RepoURL is the code-host project URL; issue references link to
	// <RepoURL>/issues/<n>.
	RepoURL string
	// ContributorURL resolves a contributor name to their registry URL.
	// May be nil.
	ContributorURL func(name string) string
}

// RenderMarkdown writes the fragment as a hyperlinked markdown page.
// The output is idempotent: rendering the same fragment twice produces
// byte-identical results.
func RenderMarkdown(doc *Document, links Links, w io.Writer) error {
	if err := renderMarkdownHeader(doc, w); err != nil {
		return err
	}
	for _, section := range doc.Sections {
		if err := renderMarkdownSection(section, links, w); err != nil {
			return err
		}
	}
	return nil
}

// RenderMarkdownString renders the fragment to a markdown string.
func RenderMarkdownString(doc *Document, links Links) (string, error) {
	var sb strings.Builder
	if err := RenderMarkdown(doc, links, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func renderMarkdownHeader(doc *Document, w io.Writer) error {
	heading := "Release notes"
	if doc.Title != nil {
		heading = doc.Title.Raw
	}
	if _, err := fmt.Fprintf(w, "# %s\n", heading); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

func renderMarkdownSection(section *Section, links Links, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\n## %s\n\n", section.Heading); err != nil {
		return fmt.Errorf("failed to write section heading: %w", err)
	}
	for _, entry := range section.Entries {
		if _, err := fmt.Fprintf(w, "- %s\n", renderMarkdownEntry(entry, links)); err != nil {
			return fmt.Errorf("failed to write entry: %w", err)
		}
	}
	return nil
}

// renderMarkdownEntry converts one entry's markup to markdown. Entries
// whose markup failed to scan are emitted verbatim.
func renderMarkdownEntry(entry *Entry, links Links) string {
	if entry.ScanErr != nil || entry.Tokens == nil {
		return entry.Text
	}

	var sb strings.Builder
	for _, t := range entry.Tokens {
		sb.WriteString(renderMarkdownToken(t, links))
	}
	return sb.String()
}

func renderMarkdownToken(t markup.Token, links Links) string {
	switch t.Kind {
	case markup.KindLiteral:
		return "`" + t.Content + "`"
	case markup.KindNamedRef:
		return mdLink(t.Content, contributorURL(links, t.Content))
	case markup.KindRole:
		return renderMarkdownRole(t, links)
	default:
		return t.Content
	}
}

func renderMarkdownRole(t markup.Token, links Links) string {
	switch {
	case t.Name == "gh":
		if links.RepoURL == "" {
			return t.DisplayText()
		}
		return fmt.Sprintf("[%s](%s/issues/%s)", t.DisplayText(), strings.TrimRight(links.RepoURL, "/"), t.Content)
	case t.Name == "newcontrib":
		return "**" + mdLink(t.Content, contributorURL(links, t.Content)) + "**"
	case markup.CrossRefRoles[t.Name]:
		display := "`" + t.DisplayText() + "`"
		if links.DocsURL == "" {
			return display
		}
		return fmt.Sprintf("[%s](%s/generated/%s.html)", display, strings.TrimRight(links.DocsURL, "/"), t.Target())
	default:
		return t.DisplayText()
	}
}

func contributorURL(links Links, name string) string {
	if links.ContributorURL == nil {
		return ""
	}
	return links.ContributorURL(name)
}

func mdLink(text, url string) string {
	if url == "" {
		return text
	}
	return fmt.Sprintf("[%s](%s)", text, url)
}
