package notes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// ErrNoChanges indicates a rollover was requested but the working
// fragment has no real entries, only placeholders.
var ErrNoChanges = errors.New("no release-notes entries to roll over")

// entryWrapWidth is the column entries are wrapped at when composed
// programmatically. Hand-written entries keep their own wrapping.
const entryWrapWidth = 88

// EntrySpec describes an entry to compose. Text may carry inline markup;
// the attribution tail is built from the remaining fields.
type EntrySpec struct {
	Text            string
	Issues          []int
	Authors         []string
	NewContributors []string
}

// ComposeEntry builds the canonical source text for an entry, appending
// the attribution tail when issues or authors are given.
func ComposeEntry(spec EntrySpec) (string, error) {
	text := strings.TrimSpace(spec.Text)
	if text == "" {
		return "", fmt.Errorf("entry text must not be empty")
	}

	tail := attributionTail(spec)
	if tail == "" {
		return text, nil
	}
	return text + " " + tail, nil
}

func attributionTail(spec EntrySpec) string {
	var issues []string
	for _, n := range spec.Issues {
		issues = append(issues, fmt.Sprintf(":gh:`%d`", n))
	}
	var authors []string
	for _, name := range spec.Authors {
		authors = append(authors, fmt.Sprintf("`%s`_", name))
	}
	for _, name := range spec.NewContributors {
		authors = append(authors, fmt.Sprintf(":newcontrib:`%s`", name))
	}

	var parts []string
	if len(issues) > 0 {
		parts = append(parts, strings.Join(issues, " and "))
	}
	if len(authors) > 0 {
		parts = append(parts, "by "+strings.Join(authors, " and "))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Insert adds a new entry at the top of the given section, creating the
// section if the fragment does not have it yet and retiring any
// placeholder entries it held.
func (doc *Document) Insert(kind SectionKind, text string) (*Entry, error) {
	entry := &Entry{
		Text:  text,
		Lines: wrapEntry(text),
	}
	finalizeEntry(entry)
	if entry.ScanErr != nil {
		return nil, fmt.Errorf("entry has malformed markup: %w", entry.ScanErr)
	}

	section := doc.Section(kind)
	if section == nil {
		section = doc.addSection(kind)
	}

	kept := section.Entries[:0]
	for _, existing := range section.Entries {
		if !existing.Placeholder {
			kept = append(kept, existing)
		}
	}
	section.Entries = append([]*Entry{entry}, kept...)
	return entry, nil
}

// addSection creates an empty canonical section, keeping canonical
// sections in their conventional order relative to each other.
func (doc *Document) addSection(kind SectionKind) *Section {
	heading := kind.Title()
	section := &Section{
		Kind:      kind,
		Heading:   heading,
		Underline: SectionUnderline(heading),
	}

	at := len(doc.Sections)
	for i, existing := range doc.Sections {
		if existing.Kind != SectionUnknown && existing.Kind > kind {
			at = i
			break
		}
	}
	doc.Sections = append(doc.Sections, nil)
	copy(doc.Sections[at+1:], doc.Sections[at:])
	doc.Sections[at] = section
	return section
}

// Rollover produces the archived release fragment for the working
// fragment: placeholder entries and empty sections are dropped, the
// title gets the release version and date, and the anchor is renamed so
// archived releases stay linkable. The receiver is not modified.
func Rollover(doc *Document, version *semver.Version, date time.Time) (*Document, error) {
	if !HasReleasableContent(doc) {
		return nil, ErrNoChanges
	}

	label := versionLabel(version)
	title := fmt.Sprintf("Version %s (%s)", label, date.Format("2006-01-02"))
	released := &Document{
		Anchor: "changes_" + strings.ReplaceAll(label, ".", "_"),
		Title: &Title{
			Raw:       title,
			Version:   label,
			Date:      date.Format("2006-01-02"),
			Underline: TitleUnderline(title),
		},
	}

	for _, section := range doc.Sections {
		copied := &Section{
			Kind:      section.Kind,
			Heading:   section.Heading,
			Underline: section.Underline,
		}
		for _, entry := range section.Entries {
			if entry.Placeholder {
				continue
			}
			copied.Entries = append(copied.Entries, entry)
		}
		if len(copied.Entries) > 0 {
			released.Sections = append(released.Sections, copied)
		}
	}
	return released, nil
}

// HasReleasableContent reports whether the fragment carries at least one
// real entry.
func HasReleasableContent(doc *Document) bool {
	for _, section := range doc.Sections {
		for _, entry := range section.Entries {
			if !entry.Placeholder {
				return true
			}
		}
	}
	return false
}

func versionLabel(version *semver.Version) string {
	label := fmt.Sprintf("%d.%d", version.Major(), version.Minor())
	if version.Patch() != 0 {
		label = fmt.Sprintf("%s.%d", label, version.Patch())
	}
	return label
}

// wrapEntry lays the entry text out as bullet source lines, wrapping at
// a fixed column without splitting backtick-protected markup.
func wrapEntry(text string) []string {
	words := splitEntryWords(text)
	if len(words) == 0 {
		return []string{"- "}
	}

	var lines []string
	current := "- " + words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > entryWrapWidth {
			lines = append(lines, current)
			current = "  " + word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}

// splitEntryWords splits on spaces outside backtick spans, so role
// content and contributor names wrap as single units.
func splitEntryWords(text string) []string {
	var words []string
	var current strings.Builder
	inSingle := false
	inDouble := false

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '`' && !inSingle && i+1 < len(text) && text[i+1] == '`':
			inDouble = !inDouble
			current.WriteString("``")
			i++
		case c == '`' && !inDouble:
			inSingle = !inSingle
			current.WriteByte(c)
		case c == ' ' && !inSingle && !inDouble:
			flush()
		default:
			current.WriteByte(c)
		}
	}
	flush()
	return words
}
