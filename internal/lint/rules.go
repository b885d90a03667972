package lint

// Rule identifiers. IDs are stable: they appear in reports, CI
// configuration, and documentation.
const (
	// RuleSyntax covers structural parse failures and malformed inline
	// markup.
	RuleSyntax = "syntax"
	// RuleUnknownSection fires on section headings outside the
	// canonical three.
	RuleUnknownSection = "unknown-section"
	// RuleSectionOrder fires when canonical sections appear out of
	// order or more than once.
	RuleSectionOrder = "section-order"
	// RuleUnknownRole fires on roles the toolchain does not understand.
	RuleUnknownRole = "unknown-role"
	// RuleUnresolvedSymbol fires when a cross-reference does not
	// resolve against the symbol inventory.
	RuleUnresolvedSymbol = "unresolved-symbol"
	// RuleUnknownContributor fires when a contributor reference does
	// not resolve against the registry.
	RuleUnknownContributor = "unknown-contributor"
	// RuleEntryOrder fires when entries are not newest-on-top within a
	// section, judged by their highest referenced issue number.
	RuleEntryOrder = "entry-order"
	// RuleMissingAttribution warns on entries without an author.
	RuleMissingAttribution = "missing-attribution"
	// RuleMissingIssueRef warns on entries without an issue reference.
	RuleMissingIssueRef = "missing-issue-ref"
	// RuleDuplicateEntry warns when two entries read the same after
	// markup stripping.
	RuleDuplicateEntry = "duplicate-entry"
	// RuleEmptySection warns on sections without entries; use a
	// "None yet" placeholder instead.
	RuleEmptySection = "empty-section"
	// RuleTitleUnderline warns when a heading underline does not match
	// its heading length.
	RuleTitleUnderline = "title-underline"
	// RuleUnknownIssue fires when forge verification finds no issue or
	// pull request behind a referenced number.
	RuleUnknownIssue = "unknown-issue"
)

// Rule describes one lint rule for listings.
type Rule struct {
	ID          string
	Severity    Severity
	Description string
}

// Rules returns every rule in documentation order.
func Rules() []Rule {
	return []Rule{
		{RuleSyntax, SeverityError, "fragment structure or inline markup does not parse"},
		{RuleUnknownSection, SeverityError, "section heading is not Enhancements, Bugs, or API changes"},
		{RuleSectionOrder, SeverityError, "canonical sections are duplicated or out of order"},
		{RuleUnknownRole, SeverityError, "role is not one the toolchain understands"},
		{RuleUnresolvedSymbol, SeverityError, "cross-reference does not resolve against the symbol inventory"},
		{RuleUnknownContributor, SeverityError, "contributor reference does not resolve against the registry"},
		{RuleEntryOrder, SeverityError, "entries are not newest-on-top by issue number within their section"},
		{RuleMissingAttribution, SeverityWarning, "entry has no author attribution"},
		{RuleMissingIssueRef, SeverityWarning, "entry references no issue or pull request"},
		{RuleDuplicateEntry, SeverityWarning, "two entries read the same after markup stripping"},
		{RuleEmptySection, SeverityWarning, "section has no entries at all"},
		{RuleTitleUnderline, SeverityWarning, "heading underline length does not match the heading"},
		{RuleUnknownIssue, SeverityError, "referenced issue number does not exist on the forge"},
	}
}
