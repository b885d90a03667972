package notes

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/relnotes-tools/relnotes/internal/markup"
)

// ValidationError reports a structural problem the fragment grammar cannot
// recover from, with the file position where it occurred.
type ValidationError struct {
	Path    string
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

var (
	titleRe  = regexp.MustCompile(`^Version\s+(\S+)\s+\((unreleased|\d{4}-\d{2}-\d{2})\)$`)
	fieldRe  = regexp.MustCompile(`^:[a-z][a-z-]*:$`)
	anchorRe = regexp.MustCompile(`^\.\. _([^:]+):$`)
)

// placeholderTexts are filler entries that keep empty sections readable in
// the unreleased fragment. They are excluded from most lint rules.
var placeholderTexts = map[string]bool{
	"none":        true,
	"none yet":    true,
	"nothing yet": true,
}

// Load reads and parses a fragment from disk.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fragment: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse parses a fragment from a reader. The path is used for error
// positions only.
func Parse(r io.Reader, path string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading fragment %s: %w", path, err)
	}
	return parseLines(lines, path)
}

func parseLines(lines []string, path string) (*Document, error) {
	doc := &Document{Path: path}
	var current *Section

	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			i++

		case strings.HasPrefix(line, "- "):
			if current == nil {
				return nil, &ValidationError{
					Path:    path,
					Line:    i + 1,
					Message: "entry appears before any section heading",
				}
			}
			entry, next := parseEntry(lines, i)
			current.Entries = append(current.Entries, entry)
			i = next

		case anchorRe.MatchString(trimmed):
			if doc.Anchor == "" {
				doc.Anchor = anchorRe.FindStringSubmatch(trimmed)[1]
			}
			i++

		case strings.HasPrefix(trimmed, ".."):
			// Comment or directive. Structure only, never content.
			i++

		case fieldRe.MatchString(trimmed):
			doc.Fields = append(doc.Fields, trimmed)
			i++

		case i+1 < len(lines) && isUnderline(lines[i+1]):
			underline := strings.TrimSpace(lines[i+1])
			if title, ok := parseTitle(trimmed); ok {
				if doc.Title != nil || current != nil {
					return nil, &ValidationError{
						Path:    path,
						Line:    i + 1,
						Message: "multiple version headings in one fragment (one release per file)",
					}
				}
				title.Line = i + 1
				title.Underline = underline
				doc.Title = title
			} else {
				kind, known := KindForTitle(trimmed)
				if !known {
					kind = SectionUnknown
				}
				current = &Section{Kind: kind, Heading: trimmed, Line: i + 1, Underline: underline}
				doc.Sections = append(doc.Sections, current)
			}
			i += 2

		default:
			return nil, &ValidationError{
				Path:    path,
				Line:    i + 1,
				Message: fmt.Sprintf("unexpected text outside an entry: %q", trimmed),
			}
		}
	}

	return doc, nil
}

// parseEntry consumes a bullet and its indented continuation lines starting
// at index i. It returns the entry and the index of the first unconsumed line.
func parseEntry(lines []string, i int) (*Entry, int) {
	entry := &Entry{
		Text:  strings.TrimSpace(strings.TrimPrefix(lines[i], "- ")),
		Lines: []string{lines[i]},
		Line:  i + 1,
	}

	j := i + 1
	for j < len(lines) {
		line := lines[j]
		if strings.TrimSpace(line) == "" || !strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "- ") {
			break
		}
		entry.Text += " " + strings.TrimSpace(line)
		entry.Lines = append(entry.Lines, line)
		j++
	}

	finalizeEntry(entry)
	return entry, j
}

// finalizeEntry scans the joined text for markup and derives the entry's
// cross-references, issue numbers, and authors.
func finalizeEntry(e *Entry) {
	norm := strings.ToLower(strings.TrimRight(strings.TrimSpace(e.Text), ".!"))
	if placeholderTexts[norm] {
		e.Placeholder = true
		return
	}

	tokens, err := markup.Scan(e.Text)
	if err != nil {
		var scanErr *markup.ScanError
		errors.As(err, &scanErr)
		e.ScanErr = scanErr
		return
	}
	e.Tokens = tokens

	for _, t := range tokens {
		if t.Kind != markup.KindRole {
			continue
		}
		switch {
		case markup.CrossRefRoles[t.Name]:
			e.Refs = append(e.Refs, SymbolRef{Role: t.Name, Target: t.Target(), Raw: t.Raw})
		case t.Name == "gh":
			if n, err := strconv.Atoi(t.Content); err == nil {
				e.Issues = append(e.Issues, n)
			}
		}
	}

	e.Authors = parseAuthors(e.Text, tokens)
}

// parseAuthors extracts contributor references from the attribution tail,
// the trailing "(... by ...)" group of the entry.
func parseAuthors(text string, tokens []markup.Token) []Author {
	trimmed := strings.TrimRight(text, " ")
	if !strings.HasSuffix(trimmed, ")") {
		return nil
	}

	open := matchingOpen(trimmed)
	if open < 0 {
		return nil
	}

	tailStart := open + 1
	tailEnd := len(trimmed) - 1

	// Locate the last " by " inside the tail that falls in plain text,
	// so a literal containing "by" cannot split the attribution.
	byAt := -1
	for _, t := range tokens {
		if t.Kind != markup.KindText {
			continue
		}
		end := t.Offset + len(t.Raw)
		if end <= tailStart || t.Offset >= tailEnd {
			continue
		}
		for idx := strings.LastIndex(t.Raw, " by "); idx >= 0; idx = strings.LastIndex(t.Raw[:idx], " by ") {
			at := t.Offset + idx
			if at >= tailStart && at < tailEnd && at > byAt {
				byAt = at
				break
			}
		}
	}
	if byAt < 0 {
		return nil
	}

	var authors []Author
	for _, t := range tokens {
		if t.Offset <= byAt || t.Offset >= tailEnd {
			continue
		}
		switch {
		case t.Kind == markup.KindNamedRef:
			authors = append(authors, Author{Name: t.Content})
		case t.Kind == markup.KindRole && t.Name == "newcontrib":
			authors = append(authors, Author{Name: t.Content, NewContributor: true})
		}
	}
	return authors
}

// matchingOpen returns the index of the "(" matching the final ")" of the
// text, or -1 when unbalanced.
func matchingOpen(text string) int {
	depth := 0
	for i := len(text) - 1; i >= 0; i-- {
		switch text[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseTitle(line string) (*Title, bool) {
	m := titleRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	t := &Title{Raw: line, Version: m[1]}
	if m[2] == "unreleased" {
		t.Unreleased = true
	} else {
		t.Date = m[2]
	}
	return t, true
}

// isUnderline reports whether the line is an RST heading underline: a run
// of a single punctuation character.
func isUnderline(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 {
		return false
	}
	c := trimmed[0]
	if !strings.ContainsRune(`=-~^"'`, rune(c)) {
		return false
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i] != c {
			return false
		}
	}
	return true
}
