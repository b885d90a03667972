package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRST_RoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := Parse(strings.NewReader(develFragment), "devel.inc")
	require.NoError(t, err)

	out, err := RenderRSTString(doc)
	require.NoError(t, err)

	// Entry content survives byte for byte; only block spacing is
	// normalized, so re-parsing yields the same structure.
	redoc, err := Parse(strings.NewReader(out), "devel.inc")
	require.NoError(t, err)

	assert.Equal(t, doc.Anchor, redoc.Anchor)
	assert.Equal(t, doc.Fields, redoc.Fields)
	require.NotNil(t, redoc.Title)
	assert.Equal(t, doc.Title.Raw, redoc.Title.Raw)
	require.Len(t, redoc.Sections, len(doc.Sections))
	for i := range doc.Sections {
		assert.Equal(t, doc.Sections[i].Heading, redoc.Sections[i].Heading)
		require.Len(t, redoc.Sections[i].Entries, len(doc.Sections[i].Entries))
		for j := range doc.Sections[i].Entries {
			assert.Equal(t, doc.Sections[i].Entries[j].Lines, redoc.Sections[i].Entries[j].Lines)
		}
	}
}

func TestRenderRST_Stable(t *testing.T) {
	t.Parallel()

	doc, err := Parse(strings.NewReader(develFragment), "devel.inc")
	require.NoError(t, err)
	out, err := RenderRSTString(doc)
	require.NoError(t, err)

	redoc, err := Parse(strings.NewReader(out), "devel.inc")
	require.NoError(t, err)
	again, err := RenderRSTString(redoc)
	require.NoError(t, err)

	assert.Equal(t, out, again)
}

func TestRenderRST_SynthesizesUnderlines(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Title: &Title{Raw: "Version 2.0 (unreleased)", Version: "2.0", Unreleased: true},
		Sections: []*Section{
			{Kind: SectionBugs, Heading: "Bugs"},
		},
	}

	out, err := RenderRSTString(doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Version 2.0 (unreleased)\n------------------------")
	assert.Contains(t, out, "Bugs\n~~~~")
	assert.True(t, strings.HasSuffix(out, "\n"))
}
