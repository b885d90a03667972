package notes

import (
	"fmt"
	"io"
	"strings"
)

// TitleUnderline returns a '-' underline sized to the title text.
func TitleUnderline(title string) string {
	return strings.Repeat("-", len(title))
}

// SectionUnderline returns a '~' underline sized to the heading text.
func SectionUnderline(heading string) string {
	return strings.Repeat("~", len(heading))
}

// RenderRST writes the fragment back out in source form. Entry lines are
// emitted verbatim, so a parse/render round trip only normalizes block
// spacing, never entry content.
func RenderRST(doc *Document, w io.Writer) error {
	bw := &blockWriter{w: w}

	for _, field := range doc.Fields {
		bw.block(field)
	}
	if doc.Anchor != "" {
		bw.block(fmt.Sprintf(".. _%s:", doc.Anchor))
	}
	if doc.Title != nil {
		underline := doc.Title.Underline
		if underline == "" {
			underline = TitleUnderline(doc.Title.Raw)
		}
		bw.block(doc.Title.Raw + "\n" + underline)
	}
	for _, section := range doc.Sections {
		underline := section.Underline
		if underline == "" {
			underline = SectionUnderline(section.Heading)
		}
		bw.block(section.Heading + "\n" + underline)
		for _, entry := range section.Entries {
			bw.block(strings.Join(entry.Lines, "\n"))
		}
	}
	if bw.err != nil {
		return fmt.Errorf("failed to write fragment: %w", bw.err)
	}
	// Trailing newline so the file ends cleanly for diff tools.
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write fragment: %w", err)
	}
	return nil
}

// RenderRSTString renders the fragment to its source form.
func RenderRSTString(doc *Document) (string, error) {
	var sb strings.Builder
	if err := RenderRST(doc, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// blockWriter joins blocks with single blank lines and carries the first
// write error so callers check once at the end.
type blockWriter struct {
	w     io.Writer
	wrote bool
	err   error
}

func (b *blockWriter) block(text string) {
	if b.err != nil {
		return
	}
	if b.wrote {
		if _, err := io.WriteString(b.w, "\n\n"); err != nil {
			b.err = err
			return
		}
	}
	if _, err := io.WriteString(b.w, text); err != nil {
		b.err = err
		return
	}
	b.wrote = true
}
