package lint

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Counts(t *testing.T) {
	t.Parallel()

	report := NewReport()
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.HasFindings())

	report.Add(
		Finding{Path: "a.inc", Line: 4, Rule: RuleUnresolvedSymbol, Severity: SeverityError, Message: "x"},
		Finding{Path: "a.inc", Line: 2, Rule: RuleMissingIssueRef, Severity: SeverityWarning, Message: "y"},
	)

	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 1, report.Warnings)
	assert.True(t, report.HasErrors())
	assert.True(t, report.HasFindings())
}

func TestReport_Sort(t *testing.T) {
	t.Parallel()

	report := NewReport()
	report.Add(
		Finding{Path: "b.inc", Line: 1, Rule: "b"},
		Finding{Path: "a.inc", Line: 9, Rule: "c"},
		Finding{Path: "a.inc", Line: 2, Rule: "a"},
	)
	report.Sort()

	assert.Equal(t, "a.inc", report.Findings[0].Path)
	assert.Equal(t, 2, report.Findings[0].Line)
	assert.Equal(t, "a.inc", report.Findings[1].Path)
	assert.Equal(t, 9, report.Findings[1].Line)
	assert.Equal(t, "b.inc", report.Findings[2].Path)
}

func TestReport_WriteJSON(t *testing.T) {
	t.Parallel()

	report := NewReport()
	report.FilesChecked = 1
	report.Add(Finding{
		Path: "devel.inc", Line: 4, Rule: RuleUnknownContributor,
		Severity: SeverityError, Message: "contributor \"X\" is not in the registry",
	})

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report.RunID, decoded.RunID)
	require.Len(t, decoded.Findings, 1)
	assert.Equal(t, SeverityError, decoded.Findings[0].Severity)
	assert.Contains(t, buf.String(), `"severity": "error"`)
}

func TestReport_WriteText(t *testing.T) {
	t.Parallel()

	report := NewReport()
	report.FilesChecked = 2
	report.Add(
		Finding{Path: "devel.inc", Line: 4, Rule: RuleUnresolvedSymbol, Severity: SeverityError,
			Message: ":func:`x` does not resolve to a documented symbol", Remediation: "did you mean: y"},
		Finding{Path: "devel.inc", Line: 7, Rule: RuleMissingIssueRef, Severity: SeverityWarning,
			Message: "entry references no issue or pull request"},
	)

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "devel.inc:4:")
	assert.Contains(t, out, ":func:`x` does not resolve")
	assert.Contains(t, out, "did you mean: y")
	assert.Contains(t, out, "devel.inc:7:")
	assert.Contains(t, out, "1 error, 1 warning across 2 files")
}

func TestReport_WriteTextClean(t *testing.T) {
	t.Parallel()

	report := NewReport()
	report.FilesChecked = 3

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))
	assert.Contains(t, buf.String(), "3 files clean")
}

func TestSeverity_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(SeverityWarning)
	require.NoError(t, err)
	assert.Equal(t, `"warning"`, string(data))

	var s Severity
	require.NoError(t, json.Unmarshal([]byte(`"error"`), &s))
	assert.Equal(t, SeverityError, s)

	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &s))
}

func TestRules_CoverEveryID(t *testing.T) {
	t.Parallel()

	ids := make(map[string]bool)
	for _, rule := range Rules() {
		ids[rule.ID] = true
		assert.NotEmpty(t, rule.Description)
	}
	assert.Len(t, ids, 13)
	assert.True(t, ids[RuleUnresolvedSymbol])
	assert.True(t, ids[RuleUnknownContributor])
	assert.True(t, ids[RuleEntryOrder])
}
