package lint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relnotes-tools/relnotes/internal/contributors"
	"github.com/relnotes-tools/relnotes/internal/inventory"
	"github.com/relnotes-tools/relnotes/internal/notes"
)

const testInventory = `neuro.io.read_raw_edf function
neuro.Epochs class
neuro.Epochs.average method
neuro.preprocessing.ICA class
`

const testRegistry = `.. _Jane Doe: https://github.com/janedoe
.. _John Smith: https://github.com/johnsmith
`

func newTestLinter(t *testing.T) *Linter {
	t.Helper()
	inv, err := inventory.Parse(strings.NewReader(testInventory), "objects.txt")
	require.NoError(t, err)
	reg, err := contributors.Parse(strings.NewReader(testRegistry), "names.inc")
	require.NoError(t, err)
	return &Linter{Inventory: inv, Contributors: reg}
}

func lintFragment(t *testing.T, l *Linter, fragment string) []Finding {
	t.Helper()
	doc, err := notes.Parse(strings.NewReader(fragment), "devel.inc")
	require.NoError(t, err)
	return l.Check(doc)
}

func rulesOf(findings []Finding) []string {
	rules := make([]string, len(findings))
	for i, f := range findings {
		rules[i] = f.Rule
	}
	return rules
}

func TestCheck_CleanFragment(t *testing.T) {
	t.Parallel()

	fragment := "Version 1.4 (unreleased)\n" +
		"------------------------\n\n" +
		"Enhancements\n~~~~~~~~~~~~\n\n" +
		"- Add :func:`neuro.io.read_raw_edf` annotations (:gh:`11969` by `Jane Doe`_)\n" +
		"- Speed up :meth:`~neuro.Epochs.average` (:gh:`11938` by `John Smith`_)\n\n" +
		"Bugs\n~~~~\n\n" +
		"- None yet\n"

	findings := lintFragment(t, newTestLinter(t), fragment)
	assert.Empty(t, findings)
}

func TestCheck_UnresolvedSymbol(t *testing.T) {
	t.Parallel()

	fragment := "Bugs\n~~~~\n\n- Fix :func:`neuro.io.read_raw_ed` crash (:gh:`1` by `Jane Doe`_)\n"
	findings := lintFragment(t, newTestLinter(t), fragment)

	require.Len(t, findings, 1)
	assert.Equal(t, RuleUnresolvedSymbol, findings[0].Rule)
	assert.Equal(t, SeverityError, findings[0].Severity)
	assert.Contains(t, findings[0].Message, ":func:`neuro.io.read_raw_ed`")
	assert.Equal(t, 4, findings[0].Line)
}

func TestCheck_UnresolvedSymbolSuggestion(t *testing.T) {
	t.Parallel()

	fragment := "Bugs\n~~~~\n\n- Fix :meth:`neuro.Evoked.average` (:gh:`1` by `Jane Doe`_)\n"
	findings := lintFragment(t, newTestLinter(t), fragment)

	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Remediation, "did you mean: neuro.Epochs.average")
}

func TestCheck_TildePrefixResolves(t *testing.T) {
	t.Parallel()

	fragment := "Bugs\n~~~~\n\n- Fix :class:`~neuro.preprocessing.ICA` fitting (:gh:`1` by `Jane Doe`_)\n"
	findings := lintFragment(t, newTestLinter(t), fragment)
	assert.Empty(t, findings)
}

func TestCheck_UnknownContributor(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		entry           string
		wantName        string
		wantRemediation string
	}{
		"unregistered named ref": {
			entry:           "- Fix decoding (:gh:`1` by `Nobody Known`_)",
			wantName:        `"Nobody Known"`,
			wantRemediation: "contributors add",
		},
		"wrong case suggests registered spelling": {
			entry:           "- Fix decoding (:gh:`1` by `jane doe`_)",
			wantName:        `"jane doe"`,
			wantRemediation: `registered spelling is "Jane Doe"`,
		},
		"unregistered new contributor": {
			entry:           "- Fix decoding (:gh:`1` by :newcontrib:`Nobody Known`)",
			wantName:        `"Nobody Known"`,
			wantRemediation: "contributors add",
		},
		"reference outside the attribution tail": {
			entry:           "- Thank `Nobody Known`_ for reporting (:gh:`1` by `Jane Doe`_)",
			wantName:        `"Nobody Known"`,
			wantRemediation: "contributors add",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fragment := "Bugs\n~~~~\n\n" + tc.entry + "\n"
			findings := lintFragment(t, newTestLinter(t), fragment)

			require.Len(t, findings, 1)
			assert.Equal(t, RuleUnknownContributor, findings[0].Rule)
			assert.Contains(t, findings[0].Message, tc.wantName)
			assert.Contains(t, findings[0].Remediation, tc.wantRemediation)
		})
	}
}

func TestCheck_EntryOrder(t *testing.T) {
	t.Parallel()

	fragment := "Bugs\n~~~~\n\n" +
		"- Fix one thing (:gh:`100` by `Jane Doe`_)\n" +
		"- Fix another thing (:gh:`200` by `Jane Doe`_)\n"
	findings := lintFragment(t, newTestLinter(t), fragment)

	require.Len(t, findings, 1)
	assert.Equal(t, RuleEntryOrder, findings[0].Rule)
	assert.Equal(t, 5, findings[0].Line)
	assert.Contains(t, findings[0].Message, ":gh:`200` appears below :gh:`100`")
	assert.Contains(t, findings[0].Remediation, "line 4")
}

func TestCheck_EntryOrderSkipsEntriesWithoutIssues(t *testing.T) {
	t.Parallel()

	fragment := "Bugs\n~~~~\n\n" +
		"- Fix one thing (:gh:`200` by `Jane Doe`_)\n" +
		"- Fix a small typo (by `Jane Doe`_)\n" +
		"- Fix another thing (:gh:`100` by `Jane Doe`_)\n"
	findings := lintFragment(t, newTestLinter(t), fragment)

	for _, f := range findings {
		assert.NotEqual(t, RuleEntryOrder, f.Rule)
	}
}

func TestCheck_UnknownRole(t *testing.T) {
	t.Parallel()

	fragment := "Bugs\n~~~~\n\n- Fix :py:`neuro.Epochs` handling (:gh:`1` by `Jane Doe`_)\n"
	findings := lintFragment(t, newTestLinter(t), fragment)

	require.Len(t, findings, 1)
	assert.Equal(t, RuleUnknownRole, findings[0].Rule)
	assert.Contains(t, findings[0].Message, ":py:")
}

func TestCheck_NonNumericIssue(t *testing.T) {
	t.Parallel()

	fragment := "Bugs\n~~~~\n\n- Fix decoding (:gh:`abc` by `Jane Doe`_)\n"
	findings := lintFragment(t, newTestLinter(t), fragment)

	require.NotEmpty(t, findings)
	assert.Equal(t, RuleSyntax, findings[0].Rule)
	assert.Contains(t, findings[0].Message, ":gh:`abc`")
}

func TestCheck_MalformedMarkup(t *testing.T) {
	t.Parallel()

	fragment := "Bugs\n~~~~\n\n- Fix `broken markup\n"
	findings := lintFragment(t, newTestLinter(t), fragment)

	require.Len(t, findings, 1)
	assert.Equal(t, RuleSyntax, findings[0].Rule)
	assert.Contains(t, findings[0].Message, "malformed markup")
}

func TestCheck_SectionRules(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		fragment        string
		wantRule        string
		wantRemediation string
	}{
		"unknown section": {
			fragment: "Changes\n~~~~~~~\n\n- None yet\n",
			wantRule: RuleUnknownSection,
		},
		"miscased section suggests canonical spelling": {
			fragment:        "BUGS\n~~~~\n\n- None yet\n",
			wantRule:        RuleUnknownSection,
			wantRemediation: `write "Bugs"`,
		},
		"duplicate section": {
			fragment: "Bugs\n~~~~\n\n- None yet\n\nBugs\n~~~~\n\n- None yet\n",
			wantRule: RuleSectionOrder,
		},
		"out of order": {
			fragment: "Bugs\n~~~~\n\n- None yet\n\nEnhancements\n~~~~~~~~~~~~\n\n- None yet\n",
			wantRule: RuleSectionOrder,
		},
		"empty section": {
			fragment: "Bugs\n~~~~\n",
			wantRule: RuleEmptySection,
		},
		"underline length": {
			fragment: "Bugs\n~~~~~~\n\n- None yet\n",
			wantRule: RuleTitleUnderline,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			findings := lintFragment(t, newTestLinter(t), tc.fragment)
			require.NotEmpty(t, findings)
			assert.Contains(t, rulesOf(findings), tc.wantRule)
			if tc.wantRemediation != "" {
				found := false
				for _, f := range findings {
					if strings.Contains(f.Remediation, tc.wantRemediation) {
						found = true
					}
				}
				assert.True(t, found, "no finding carries remediation %q", tc.wantRemediation)
			}
		})
	}
}

func TestCheck_Warnings(t *testing.T) {
	t.Parallel()

	fragment := "Bugs\n~~~~\n\n" +
		"- Fix decoding of EDF annotations\n" +
		"- Fix decoding of EDF annotations\n"
	findings := lintFragment(t, newTestLinter(t), fragment)

	rules := rulesOf(findings)
	assert.Contains(t, rules, RuleMissingAttribution)
	assert.Contains(t, rules, RuleMissingIssueRef)
	assert.Contains(t, rules, RuleDuplicateEntry)
	for _, f := range findings {
		assert.Equal(t, SeverityWarning, f.Severity)
	}
}

func TestCheck_StrictPromotesWarnings(t *testing.T) {
	t.Parallel()

	l := newTestLinter(t)
	l.Strict = true

	fragment := "Bugs\n~~~~\n\n- Fix decoding of EDF annotations\n"
	findings := lintFragment(t, l, fragment)

	require.NotEmpty(t, findings)
	for _, f := range findings {
		assert.Equal(t, SeverityError, f.Severity)
	}
}

func TestCheck_NilRegistriesSkipResolution(t *testing.T) {
	t.Parallel()

	l := &Linter{}
	fragment := "Bugs\n~~~~\n\n- Fix :func:`no.such.symbol` (:gh:`1` by `Nobody Known`_)\n"
	findings := lintFragment(t, l, fragment)

	rules := rulesOf(findings)
	assert.NotContains(t, rules, RuleUnresolvedSymbol)
	assert.NotContains(t, rules, RuleUnknownContributor)
}

func TestCheck_PlaceholdersAreExempt(t *testing.T) {
	t.Parallel()

	fragment := "Bugs\n~~~~\n\n- None yet\n"
	findings := lintFragment(t, newTestLinter(t), fragment)
	assert.Empty(t, findings)
}
