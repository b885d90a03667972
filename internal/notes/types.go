package notes

import (
	"strings"

	"github.com/relnotes-tools/relnotes/internal/markup"
)

// SectionKind identifies one of the canonical changelog sections.
// The integer order is the canonical section order within a fragment.
type SectionKind int

const (
	SectionEnhancements SectionKind = iota
	SectionBugs
	SectionAPIChanges
)

// SectionUnknown marks a section whose heading is not canonical.
const SectionUnknown SectionKind = -1

// Title returns the canonical heading text for the section kind.
func (k SectionKind) Title() string {
	switch k {
	case SectionEnhancements:
		return "Enhancements"
	case SectionBugs:
		return "Bugs"
	case SectionAPIChanges:
		return "API changes"
	default:
		return "Unknown"
	}
}

// CanonicalKinds returns the three canonical section kinds in order.
func CanonicalKinds() []SectionKind {
	return []SectionKind{SectionEnhancements, SectionBugs, SectionAPIChanges}
}

// KindForTitle maps a heading to its canonical section kind.
func KindForTitle(title string) (SectionKind, bool) {
	for _, k := range CanonicalKinds() {
		if title == k.Title() {
			return k, true
		}
	}
	return SectionUnknown, false
}

// KindForTitleFold is the case-insensitive variant of KindForTitle, used
// to suggest the canonical spelling for near-miss headings.
func KindForTitleFold(title string) (SectionKind, bool) {
	for _, k := range CanonicalKinds() {
		if strings.EqualFold(title, k.Title()) {
			return k, true
		}
	}
	return SectionUnknown, false
}

// Document is one parsed release-note fragment.
type Document struct {
	// Path is the source file path, used in findings and errors.
	Path string
	// Anchor is the first ".. _name:" target in the fragment, without markers.
	Anchor string
	// Fields holds top-level field lines such as ":orphan:", preserved verbatim.
	Fields []string
	// Title is the version heading. Nil for bare fragments.
	Title *Title
	// Sections in file order.
	Sections []*Section
}

// Title is the "Version X.Y (date|unreleased)" heading of a fragment.
type Title struct {
	Raw        string
	Version    string
	Date       string
	Unreleased bool
	Line       int
	Underline  string
}

// Section is one changelog section and its entries in file order
// (newest entry first).
type Section struct {
	Kind      SectionKind
	Heading   string
	Line      int
	Underline string
	Entries   []*Entry
}

// Entry is a single bullet item.
type Entry struct {
	// Text is the entry body with continuation lines joined by single
	// spaces and the leading "- " marker removed.
	Text string
	// Lines are the original source lines, marker included, for
	// verbatim re-emission.
	Lines []string
	// Line is the 1-based line number of the bullet marker.
	Line int
	// Tokens is the markup scan of Text. Nil when ScanErr is set.
	Tokens []markup.Token
	// ScanErr records malformed inline markup. The entry still parses.
	ScanErr *markup.ScanError
	// Refs are the symbol cross-references found in Text.
	Refs []SymbolRef
	// Issues are the :gh: numbers found in Text, in order of appearance.
	Issues []int
	// Authors are the contributor references from the attribution tail.
	Authors []Author
	// Placeholder marks "None yet" style filler entries.
	Placeholder bool
}

// SymbolRef is a cross-reference role pointing at a documented symbol.
type SymbolRef struct {
	Role   string
	Target string
	Raw    string
}

// Author is one contributor attribution.
type Author struct {
	Name           string
	NewContributor bool
}

// Section returns the section of the given kind, or nil.
func (d *Document) Section(kind SectionKind) *Section {
	for _, s := range d.Sections {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

// Entries returns all entries across sections in file order.
func (d *Document) Entries() []*Entry {
	var entries []*Entry
	for _, s := range d.Sections {
		entries = append(entries, s.Entries...)
	}
	return entries
}

// EntryCount returns the number of non-placeholder entries.
func (d *Document) EntryCount() int {
	count := 0
	for _, e := range d.Entries() {
		if !e.Placeholder {
			count++
		}
	}
	return count
}

// IsEmpty reports whether the fragment has no real entries.
func (d *Document) IsEmpty() bool {
	return d.EntryCount() == 0
}

// RecencyKey returns the entry's ordering key: the largest issue number it
// references, or 0 when it references none.
func (e *Entry) RecencyKey() int {
	key := 0
	for _, n := range e.Issues {
		if n > key {
			key = n
		}
	}
	return key
}

// NormalizedText returns the display text lowercased with whitespace
// collapsed, used for duplicate detection.
func (e *Entry) NormalizedText() string {
	return strings.Join(strings.Fields(strings.ToLower(markup.Strip(e.Text))), " ")
}
