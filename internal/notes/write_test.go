package notes

import (
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeEntry(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		spec    EntrySpec
		want    string
		wantErr bool
	}{
		"issue and author": {
			spec: EntrySpec{Text: "Fix EDF decoding", Issues: []int{11901}, Authors: []string{"Jane Doe"}},
			want: "Fix EDF decoding (:gh:`11901` by `Jane Doe`_)",
		},
		"two issues two authors": {
			spec: EntrySpec{Text: "Fix EDF decoding", Issues: []int{1, 2}, Authors: []string{"Jane Doe", "John Smith"}},
			want: "Fix EDF decoding (:gh:`1` and :gh:`2` by `Jane Doe`_ and `John Smith`_)",
		},
		"new contributor": {
			spec: EntrySpec{Text: "Fix EDF decoding", Issues: []int{3}, NewContributors: []string{"Ola Nordmann"}},
			want: "Fix EDF decoding (:gh:`3` by :newcontrib:`Ola Nordmann`)",
		},
		"author only": {
			spec: EntrySpec{Text: "Fix EDF decoding", Authors: []string{"Jane Doe"}},
			want: "Fix EDF decoding (by `Jane Doe`_)",
		},
		"issue only": {
			spec: EntrySpec{Text: "Fix EDF decoding", Issues: []int{11901}},
			want: "Fix EDF decoding (:gh:`11901`)",
		},
		"bare text": {
			spec: EntrySpec{Text: "Fix EDF decoding"},
			want: "Fix EDF decoding",
		},
		"empty text": {
			spec:    EntrySpec{Text: "   "},
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ComposeEntry(tc.spec)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInsert_PrependsNewestOnTop(t *testing.T) {
	t.Parallel()

	doc, err := Parse(strings.NewReader(develFragment), "devel.inc")
	require.NoError(t, err)

	entry, err := doc.Insert(SectionBugs, "Fix channel ordering (:gh:`12001` by `Jane Doe`_)")
	require.NoError(t, err)

	bugs := doc.Section(SectionBugs)
	require.Len(t, bugs.Entries, 2)
	assert.Same(t, entry, bugs.Entries[0])
	assert.Equal(t, []int{12001}, entry.Issues)
	assert.Equal(t, []Author{{Name: "Jane Doe"}}, entry.Authors)
}

func TestInsert_ReplacesPlaceholder(t *testing.T) {
	t.Parallel()

	doc, err := Parse(strings.NewReader(develFragment), "devel.inc")
	require.NoError(t, err)

	api := doc.Section(SectionAPIChanges)
	require.Len(t, api.Entries, 1)
	require.True(t, api.Entries[0].Placeholder)

	_, err = doc.Insert(SectionAPIChanges, "Deprecate ``copy`` argument of :meth:`neuro.Epochs.filter` (:gh:`12002` by `Jane Doe`_)")
	require.NoError(t, err)

	require.Len(t, api.Entries, 1)
	assert.False(t, api.Entries[0].Placeholder)
}

func TestInsert_CreatesSectionInCanonicalOrder(t *testing.T) {
	t.Parallel()

	fragment := "Version 1.4 (unreleased)\n------------------------\n\nAPI changes\n~~~~~~~~~~~\n\n- None yet\n"
	doc, err := Parse(strings.NewReader(fragment), "devel.inc")
	require.NoError(t, err)

	_, err = doc.Insert(SectionBugs, "Fix decoding (:gh:`5` by `Jane Doe`_)")
	require.NoError(t, err)

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, SectionBugs, doc.Sections[0].Kind)
	assert.Equal(t, SectionAPIChanges, doc.Sections[1].Kind)
	assert.Equal(t, "Bugs", doc.Sections[0].Heading)
	assert.Equal(t, "~~~~", doc.Sections[0].Underline)
}

func TestInsert_RejectsMalformedMarkup(t *testing.T) {
	t.Parallel()

	doc := &Document{}
	_, err := doc.Insert(SectionBugs, "Fix `broken markup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed markup")
}

func TestWrapEntry(t *testing.T) {
	t.Parallel()

	text := "Improve the memory profile of :meth:`~neuro.preprocessing.ICA.fit` when run on " +
		"long continuous recordings with many stimulus channels " +
		"(:gh:`11970` by `Jane Doe`_ and :newcontrib:`Ola Nordmann`)"
	lines := wrapEntry(text)

	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], "- "))
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "  "))
		assert.False(t, strings.HasPrefix(line, "- "))
	}
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), entryWrapWidth)
	}

	// Wrapping must not split markup: re-parsing yields the original text.
	fragment := "Bugs\n~~~~\n\n" + strings.Join(lines, "\n") + "\n"
	doc, err := Parse(strings.NewReader(fragment), "devel.inc")
	require.NoError(t, err)
	assert.Equal(t, text, doc.Sections[0].Entries[0].Text)
}

func TestWrapEntry_KeepsContributorNamesTogether(t *testing.T) {
	t.Parallel()

	// A name positioned right at the wrap column must move to the next
	// line whole, never break between first and last name.
	text := strings.Repeat("word ", 15) + "tail (:gh:`1` by `Someone With A Rather Long Name`_)"
	lines := wrapEntry(text)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "`Someone With A Rather Long Name`_")
}

func TestRollover(t *testing.T) {
	t.Parallel()

	doc, err := Parse(strings.NewReader(develFragment), "devel.inc")
	require.NoError(t, err)

	released, err := Rollover(doc, semver.MustParse("1.4.0"), time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "changes_1_4", released.Anchor)
	require.NotNil(t, released.Title)
	assert.Equal(t, "Version 1.4 (2024-06-03)", released.Title.Raw)
	assert.Equal(t, "2024-06-03", released.Title.Date)
	assert.False(t, released.Title.Unreleased)

	// The placeholder-only API changes section is dropped.
	require.Len(t, released.Sections, 2)
	assert.Equal(t, SectionEnhancements, released.Sections[0].Kind)
	assert.Equal(t, SectionBugs, released.Sections[1].Kind)

	// Source fragment is untouched.
	assert.True(t, doc.Title.Unreleased)
	require.Len(t, doc.Sections, 3)
}

func TestRollover_NoChanges(t *testing.T) {
	t.Parallel()

	fragment := "Version 1.4 (unreleased)\n------------------------\n\nBugs\n~~~~\n\n- None yet\n"
	doc, err := Parse(strings.NewReader(fragment), "devel.inc")
	require.NoError(t, err)

	_, err = Rollover(doc, semver.MustParse("1.4.0"), time.Now())
	require.ErrorIs(t, err, ErrNoChanges)
}

func TestRollover_PatchVersion(t *testing.T) {
	t.Parallel()

	fragment := "Version 1.4.1 (unreleased)\n--------------------------\n\nBugs\n~~~~\n\n- Fix decoding (:gh:`7` by `Jane Doe`_)\n"
	doc, err := Parse(strings.NewReader(fragment), "devel.inc")
	require.NoError(t, err)

	released, err := Rollover(doc, semver.MustParse("1.4.1"), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "changes_1_4_1", released.Anchor)
	assert.Equal(t, "Version 1.4.1 (2024-07-01)", released.Title.Raw)
}
