package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Object(t *testing.T) {
	result := Normalize([]byte(`{"score": 0.82, "missing_skills": ["Go", "SQL"]}`))

	assert.Equal(t, KindStructured, result.Kind)
	require.NotNil(t, result.Structured)
	assert.Equal(t, 0.82, result.Structured["score"])
	assert.Empty(t, result.Text)
	assert.Empty(t, result.Sections)
}

func TestNormalize_PlainString(t *testing.T) {
	result := Normalize([]byte(`"Your resume is a strong match."`))

	assert.Equal(t, KindPlainText, result.Kind)
	assert.Equal(t, "Your resume is a strong match.", result.Text)
}

func TestNormalize_NonJSONBody(t *testing.T) {
	result := Normalize([]byte("upstream returned raw prose, not JSON"))

	assert.Equal(t, KindPlainText, result.Kind)
	assert.Equal(t, "upstream returned raw prose, not JSON", result.Text)
}

func TestNormalize_EmptyBody(t *testing.T) {
	result := Normalize(nil)

	assert.Equal(t, KindPlainText, result.Kind)
	assert.Empty(t, result.Text)
}

func TestNormalize_HeadingList(t *testing.T) {
	result := Normalize([]byte(`["## Strengths", "Clear impact metrics", "Good keywords", "## Gaps", "No cloud experience"]`))

	assert.Equal(t, KindHeadingList, result.Kind)
	require.Len(t, result.Sections, 2)

	assert.Equal(t, "Strengths", result.Sections[0].Heading)
	assert.Equal(t, []string{"Clear impact metrics", "Good keywords"}, result.Sections[0].Items)

	assert.Equal(t, "Gaps", result.Sections[1].Heading)
	assert.Equal(t, []string{"No cloud experience"}, result.Sections[1].Items)
}

func TestNormalize_LinesBeforeFirstHeading(t *testing.T) {
	result := Normalize([]byte(`["Overall a solid resume.", "## Details", "Add numbers"]`))

	require.Len(t, result.Sections, 2)
	assert.Empty(t, result.Sections[0].Heading)
	assert.Equal(t, []string{"Overall a solid resume."}, result.Sections[0].Items)
	assert.Equal(t, "Details", result.Sections[1].Heading)
}

func TestNormalize_ListWithoutHeadings(t *testing.T) {
	result := Normalize([]byte(`["first point", "second point"]`))

	assert.Equal(t, KindHeadingList, result.Kind)
	require.Len(t, result.Sections, 1)
	assert.Empty(t, result.Sections[0].Heading)
	assert.Equal(t, []string{"first point", "second point"}, result.Sections[0].Items)
}

func TestNormalize_MixedArrayStaysStructured(t *testing.T) {
	result := Normalize([]byte(`["text", 42, {"k": "v"}]`))

	assert.Equal(t, KindStructured, result.Kind)
	require.NotNil(t, result.Structured)
	assert.Len(t, result.Structured["items"], 3)
}

func TestNormalize_BlankLinesSkipped(t *testing.T) {
	result := Normalize([]byte(`["## Section", "", "   ", "kept"]`))

	require.Len(t, result.Sections, 1)
	assert.Equal(t, []string{"kept"}, result.Sections[0].Items)
}
