package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMapping(t *testing.T) {
	mapping, err := normalizeMapping(map[string]string{
		"Title": "Headline",
		"url":   "Link",
		"date":  "Published",
		"notes": "",
	})
	require.NoError(t, err)

	assert.Equal(t, "Headline", mapping["title"])
	assert.Equal(t, "Link", mapping["url"])
	// "date" is an alias for "published_at"
	assert.Equal(t, "Published", mapping["published_at"])
	// Empty source columns are dropped entirely
	assert.NotContains(t, mapping, "notes")
}

func TestNormalizeMappingContentFields(t *testing.T) {
	mapping, err := normalizeMapping(map[string]string{
		"source_name": "Source",
		"raw_text":    "Body",
		"event_claim": "Claim",
	})
	require.NoError(t, err)

	assert.Equal(t, "Source", mapping["source_name"])
	assert.Equal(t, "Body", mapping["raw_text"])
	assert.Equal(t, "Claim", mapping["event_claim"])
}

func TestNormalizeMappingUnknownField(t *testing.T) {
	_, err := normalizeMapping(map[string]string{"sentiment": "Mood"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sentiment")
}

func TestApplyMapping(t *testing.T) {
	header := []string{"Headline", "Link", "Published"}
	mapping := map[string]string{"title": "Headline", "url": "Link", "published_at": "Published"}

	mapped := applyMapping(header, []string{"Big news", "https://example.com/a", "2025-03-10"}, mapping)
	assert.Equal(t, "Big news", mapped["title"])
	assert.Equal(t, "https://example.com/a", mapped["url"])
	assert.Equal(t, "2025-03-10", mapped["published_at"])
}

func TestApplyMappingAbsentValues(t *testing.T) {
	header := []string{"Headline", "Link", "Published"}
	mapping := map[string]string{"title": "Headline", "url": "Link", "published_at": "Published"}

	// Empty and NaN cells never become literal values
	mapped := applyMapping(header, []string{"Big news", "", "NaN"}, mapping)
	assert.Equal(t, "Big news", mapped["title"])
	assert.NotContains(t, mapped, "url")
	assert.NotContains(t, mapped, "published_at")

	// Short rows leave trailing fields absent
	mapped = applyMapping(header, []string{"Only title"}, mapping)
	assert.Equal(t, "Only title", mapped["title"])
	assert.NotContains(t, mapped, "url")
}

func TestValidateRow(t *testing.T) {
	good := map[string]string{
		"title":        "Big news",
		"url":          "https://example.com/a",
		"published_at": "March 10, 2025",
	}
	assert.Empty(t, validateRow(good))

	missing := map[string]string{}
	problems := validateRow(missing)
	assert.Len(t, problems, 2)

	badURL := map[string]string{"title": "T", "url": "ftp://example.com/a"}
	problems = validateRow(badURL)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "http")

	badDate := map[string]string{"title": "T", "url": "https://example.com/a", "published_at": "not a date"}
	problems = validateRow(badDate)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "date")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "report_2025.csv", sanitizeFilename("report 2025.csv"))
	assert.Equal(t, "data.csv", sanitizeFilename("../../data.csv"))
}
