package lint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/relnotes-tools/relnotes/internal/contributors"
	"github.com/relnotes-tools/relnotes/internal/inventory"
	"github.com/relnotes-tools/relnotes/internal/markup"
	"github.com/relnotes-tools/relnotes/internal/notes"
)

// Linter checks fragments against the rule set. The inventory and
// registry are optional; their rules are skipped when nil, which is how
// offline runs without a cached inventory still lint structure.
type Linter struct {
	Inventory    *inventory.Inventory
	Contributors *contributors.Registry
	// Strict promotes warnings to errors.
	Strict bool
}

// CheckFile parses and checks one fragment. Parse failures become
// syntax findings; only I/O failures are returned as errors.
func (l *Linter) CheckFile(path string) (*notes.Document, []Finding, error) {
	doc, err := notes.Load(path)
	if err != nil {
		var vErr *notes.ValidationError
		if errors.As(err, &vErr) {
			return nil, []Finding{l.finding(path, vErr.Line, RuleSyntax, SeverityError, vErr.Message, "")}, nil
		}
		return nil, nil, err
	}
	return doc, l.Check(doc), nil
}

// Check runs every rule against a parsed fragment.
func (l *Linter) Check(doc *notes.Document) []Finding {
	var findings []Finding
	findings = append(findings, l.checkUnderlines(doc)...)
	findings = append(findings, l.checkSections(doc)...)
	findings = append(findings, l.checkEntries(doc)...)
	findings = append(findings, l.checkOrdering(doc)...)
	return findings
}

func (l *Linter) checkUnderlines(doc *notes.Document) []Finding {
	var findings []Finding

	if t := doc.Title; t != nil && len(t.Underline) != len(t.Raw) {
		findings = append(findings, l.finding(doc.Path, t.Line, RuleTitleUnderline, SeverityWarning,
			fmt.Sprintf("title underline length %d does not match heading length %d", len(t.Underline), len(t.Raw)),
			""))
	}
	for _, section := range doc.Sections {
		if len(section.Underline) != len(section.Heading) {
			findings = append(findings, l.finding(doc.Path, section.Line, RuleTitleUnderline, SeverityWarning,
				fmt.Sprintf("underline length %d does not match heading %q", len(section.Underline), section.Heading),
				""))
		}
	}
	return findings
}

func (l *Linter) checkSections(doc *notes.Document) []Finding {
	var findings []Finding

	seen := make(map[notes.SectionKind]int)
	lastKind := notes.SectionUnknown
	for _, section := range doc.Sections {
		if section.Kind == notes.SectionUnknown {
			remediation := "expected one of: Enhancements, Bugs, API changes"
			if kind, ok := notes.KindForTitleFold(section.Heading); ok {
				remediation = fmt.Sprintf("write %q", kind.Title())
			}
			findings = append(findings, l.finding(doc.Path, section.Line, RuleUnknownSection, SeverityError,
				fmt.Sprintf("unknown section heading %q", section.Heading), remediation))
			continue
		}

		if firstLine, dup := seen[section.Kind]; dup {
			findings = append(findings, l.finding(doc.Path, section.Line, RuleSectionOrder, SeverityError,
				fmt.Sprintf("duplicate section %q (first at line %d)", section.Heading, firstLine), ""))
			continue
		}
		seen[section.Kind] = section.Line

		if lastKind != notes.SectionUnknown && section.Kind < lastKind {
			findings = append(findings, l.finding(doc.Path, section.Line, RuleSectionOrder, SeverityError,
				fmt.Sprintf("section %q appears after %q", section.Heading, lastKind.Title()),
				"canonical order is Enhancements, Bugs, API changes"))
		}
		lastKind = section.Kind

		if len(section.Entries) == 0 {
			findings = append(findings, l.finding(doc.Path, section.Line, RuleEmptySection, SeverityWarning,
				fmt.Sprintf("section %q has no entries", section.Heading),
				`add a "- None yet" placeholder`))
		}
	}
	return findings
}

func (l *Linter) checkEntries(doc *notes.Document) []Finding {
	var findings []Finding
	type firstSeen struct {
		line int
	}
	duplicates := make(map[string]firstSeen)

	for _, section := range doc.Sections {
		for _, entry := range section.Entries {
			if entry.ScanErr != nil {
				findings = append(findings, l.finding(doc.Path, entry.Line, RuleSyntax, SeverityError,
					fmt.Sprintf("malformed markup: %s", entry.ScanErr.Message), ""))
				continue
			}
			if entry.Placeholder {
				continue
			}

			findings = append(findings, l.checkEntryMarkup(doc.Path, entry)...)
			findings = append(findings, l.checkEntryRefs(doc.Path, entry)...)
			findings = append(findings, l.checkEntryContributors(doc.Path, entry)...)

			if len(entry.Authors) == 0 {
				findings = append(findings, l.finding(doc.Path, entry.Line, RuleMissingAttribution, SeverityWarning,
					"entry has no author attribution",
					"append (:gh:`N` by `Name`_) to the entry"))
			}
			if len(entry.Issues) == 0 {
				findings = append(findings, l.finding(doc.Path, entry.Line, RuleMissingIssueRef, SeverityWarning,
					"entry references no issue or pull request", ""))
			}

			norm := entry.NormalizedText()
			if prev, dup := duplicates[norm]; dup {
				findings = append(findings, l.finding(doc.Path, entry.Line, RuleDuplicateEntry, SeverityWarning,
					fmt.Sprintf("duplicate of entry at line %d", prev.line), ""))
			} else {
				duplicates[norm] = firstSeen{line: entry.Line}
			}
		}
	}
	return findings
}

func (l *Linter) checkEntryMarkup(path string, entry *notes.Entry) []Finding {
	var findings []Finding
	for _, t := range entry.Tokens {
		if t.Kind != markup.KindRole {
			continue
		}
		if !markup.KnownRoles[t.Name] {
			findings = append(findings, l.finding(path, entry.Line, RuleUnknownRole, SeverityError,
				fmt.Sprintf("unknown role :%s:", t.Name),
				"known roles: func, class, meth, attr, mod, data, ref, doc, term, gh, newcontrib"))
			continue
		}
		if t.Name == "gh" && !allDigits(t.Content) {
			findings = append(findings, l.finding(path, entry.Line, RuleSyntax, SeverityError,
				fmt.Sprintf("issue reference :gh:`%s` is not a number", t.Content), ""))
		}
	}
	return findings
}

func (l *Linter) checkEntryRefs(path string, entry *notes.Entry) []Finding {
	if l.Inventory == nil {
		return nil
	}

	var findings []Finding
	for _, ref := range entry.Refs {
		if _, ok := l.Inventory.Lookup(ref.Target); ok {
			continue
		}
		remediation := ""
		if suggestions := l.Inventory.Suggest(ref.Target); len(suggestions) > 0 {
			remediation = "did you mean: " + strings.Join(suggestions, ", ")
		}
		findings = append(findings, l.finding(path, entry.Line, RuleUnresolvedSymbol, SeverityError,
			fmt.Sprintf(":%s:`%s` does not resolve to a documented symbol", ref.Role, ref.Target),
			remediation))
	}
	return findings
}

func (l *Linter) checkEntryContributors(path string, entry *notes.Entry) []Finding {
	if l.Contributors == nil {
		return nil
	}

	var findings []Finding
	for _, t := range entry.Tokens {
		var name string
		switch {
		case t.Kind == markup.KindNamedRef:
			name = t.Content
		case t.Kind == markup.KindRole && t.Name == "newcontrib":
			name = t.Content
		default:
			continue
		}

		if _, ok := l.Contributors.Lookup(name); ok {
			continue
		}
		remediation := fmt.Sprintf("add them with: relnotes contributors add %q <url>", name)
		if canonical, ok := l.Contributors.LookupFold(name); ok {
			remediation = fmt.Sprintf("registered spelling is %q", canonical)
		}
		findings = append(findings, l.finding(path, entry.Line, RuleUnknownContributor, SeverityError,
			fmt.Sprintf("contributor %q is not in the registry", name), remediation))
	}
	return findings
}

// checkOrdering enforces newest-on-top: within a section, recency keys
// (highest issue number per entry) must be non-increasing from top to
// bottom. Entries without issue references are skipped.
func (l *Linter) checkOrdering(doc *notes.Document) []Finding {
	var findings []Finding
	for _, section := range doc.Sections {
		prevKey := 0
		prevLine := 0
		for _, entry := range section.Entries {
			if entry.ScanErr != nil || entry.Placeholder {
				continue
			}
			key := entry.RecencyKey()
			if key == 0 {
				continue
			}
			if prevKey != 0 && key > prevKey {
				findings = append(findings, l.finding(doc.Path, entry.Line, RuleEntryOrder, SeverityError,
					fmt.Sprintf("entries are not newest-on-top: :gh:`%d` appears below :gh:`%d`", key, prevKey),
					fmt.Sprintf("move this entry above the one at line %d", prevLine)))
			}
			prevKey = key
			prevLine = entry.Line
		}
	}
	return findings
}

func (l *Linter) finding(path string, line int, rule string, severity Severity, message, remediation string) Finding {
	if l.Strict && severity == SeverityWarning {
		severity = SeverityError
	}
	return Finding{
		Path:        path,
		Line:        line,
		Rule:        rule,
		Severity:    severity,
		Message:     message,
		Remediation: remediation,
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
