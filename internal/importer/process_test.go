package importer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/admiralorbiter/skien/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupImporter(t *testing.T) *Importer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return New(db, t.TempDir())
}

func writeUpload(t *testing.T, im *Importer, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(im.uploadDir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test upload: %v", err)
	}
}

var testMapping = map[string]string{
	"title":       "Headline",
	"url":         "Link",
	"date":        "Published",
	"topics":      "Topics",
	"thread":      "Thread",
	"source_name": "Source",
	"raw_text":    "Body",
	"event_claim": "Claim",
}

const testCSV = `Headline,Link,Published,Topics,Thread,Source,Body,Claim
Council approves budget,https://example.com/budget?utm_source=x,2025-03-01,City Budget;Politics,Budget fight,Example Paper,Full text of the vote,Budget passes first vote
Mayor vetoes ordinance,https://example.com/veto,2025-03-05,Politics,,,,
No link here,,2025-03-06,Politics,,,,
`

func TestSaveUploadRejectsNonCSV(t *testing.T) {
	im := setupImporter(t)
	_, err := im.SaveUpload(strings.NewReader("data"), "notes.txt", 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".csv")
}

func TestSaveUploadParsesSamples(t *testing.T) {
	im := setupImporter(t)

	result, err := im.SaveUpload(strings.NewReader(testCSV), "stories.csv", int64(len(testCSV)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Headline", "Link", "Published", "Topics", "Thread", "Source", "Body", "Claim"}, result.Header)
	assert.Equal(t, 3, result.RowCount)
	assert.Len(t, result.SampleRows, 3)
	assert.Contains(t, result.Filename, "stories.csv")
}

func TestPreview(t *testing.T) {
	im := setupImporter(t)
	writeUpload(t, im, "upload.csv", testCSV)

	result, err := im.Preview("upload.csv", testMapping)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 2, result.ValidRows)
	assert.Equal(t, 1, result.InvalidRows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Error, "url")
	assert.Len(t, result.SampleRows, 3)
}

func TestPreviewSummaryKeys(t *testing.T) {
	data, err := json.Marshal(&PreviewResult{TotalRows: 3, ValidRows: 2, InvalidRows: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"valid":2`)
	assert.Contains(t, string(data), `"invalid":1`)
}

func TestPreviewMissingFile(t *testing.T) {
	im := setupImporter(t)
	_, err := im.Preview("no-such-file.csv", testMapping)
	require.Error(t, err)
}

func TestProcess(t *testing.T) {
	im := setupImporter(t)
	writeUpload(t, im, "upload.csv", testCSV)

	result, err := im.Process("upload.csv", testMapping)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 0, result.Duplicates)

	// Tracking params are stripped before storage
	var story models.Story
	require.NoError(t, im.db.Where("url = ?", "https://example.com/budget").First(&story).Error)
	assert.Equal(t, "Example Paper", story.SourceName)
	assert.Equal(t, "Full text of the vote", story.RawText)

	// Missing source falls back to a title-cased domain
	var second models.Story
	require.NoError(t, im.db.Where("url = ?", "https://example.com/veto").First(&second).Error)
	assert.Equal(t, "Example", second.SourceName)

	// Semicolon-split topics are created and attached
	var topics []models.Topic
	im.db.Order("name ASC").Find(&topics)
	names := make([]string, 0, len(topics))
	for _, topic := range topics {
		names = append(names, topic.Name)
	}
	assert.Equal(t, []string{"City Budget", "Politics"}, names)

	var topicLinks int64
	im.db.Model(&models.StoryTopic{}).Where("story_id = ?", story.ID).Count(&topicLinks)
	assert.Equal(t, int64(2), topicLinks)

	// The thread hangs off the row's first topic
	var thread models.Thread
	require.NoError(t, im.db.Where("name = ?", "Budget fight").First(&thread).Error)
	var budget models.Topic
	require.NoError(t, im.db.Where("name = ?", "City Budget").First(&budget).Error)
	assert.Equal(t, budget.ID, thread.TopicID)

	// Only the row with a claim cell grows an event claim; its text
	// comes from that cell and it hangs off the row's first topic
	var events []models.EventClaim
	im.db.Find(&events)
	require.Len(t, events, 1)
	assert.Equal(t, "Budget passes first vote", events[0].ClaimText)
	assert.Equal(t, budget.ID, events[0].TopicID)
	require.NotNil(t, events[0].StoryPrimaryID)
	assert.Equal(t, story.ID, *events[0].StoryPrimaryID)

	var threadEvents int64
	im.db.Model(&models.ThreadEvent{}).Where("thread_id = ? AND event_id = ?", thread.ID, events[0].ID).Count(&threadEvents)
	assert.Equal(t, int64(1), threadEvents)

	var storyLinks int64
	im.db.Model(&models.EventStoryLink{}).Where("event_id = ? AND story_id = ?", events[0].ID, story.ID).Count(&storyLinks)
	assert.Equal(t, int64(1), storyLinks)

	// The uploaded file is cleaned up afterwards
	_, statErr := os.Stat(filepath.Join(im.uploadDir, "upload.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcessStoryOnlyMapping(t *testing.T) {
	im := setupImporter(t)
	csv := `Headline,Link
Plain story,https://example.com/plain
`
	writeUpload(t, im, "plain.csv", csv)

	result, err := im.Process("plain.csv", map[string]string{"title": "Headline", "url": "Link"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)

	// Without thread or claim cells the row imports as a bare story
	var stories, topics, threads, events int64
	im.db.Model(&models.Story{}).Count(&stories)
	im.db.Model(&models.Topic{}).Count(&topics)
	im.db.Model(&models.Thread{}).Count(&threads)
	im.db.Model(&models.EventClaim{}).Count(&events)
	assert.Equal(t, int64(1), stories)
	assert.Equal(t, int64(0), topics)
	assert.Equal(t, int64(0), threads)
	assert.Equal(t, int64(0), events)
}

func TestProcessThreadWithoutTopicsUsesGeneral(t *testing.T) {
	im := setupImporter(t)
	csv := `Headline,Link,Thread,Claim
Stray story,https://example.com/stray,Loose ends,Something happened
`
	writeUpload(t, im, "stray.csv", csv)

	mapping := map[string]string{
		"title":       "Headline",
		"url":         "Link",
		"thread":      "Thread",
		"event_claim": "Claim",
	}
	result, err := im.Process("stray.csv", mapping)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)

	var general models.Topic
	require.NoError(t, im.db.Where("name = ?", "General").First(&general).Error)

	var thread models.Thread
	require.NoError(t, im.db.Where("name = ?", "Loose ends").First(&thread).Error)
	assert.Equal(t, general.ID, thread.TopicID)

	var event models.EventClaim
	require.NoError(t, im.db.Where("claim_text = ?", "Something happened").First(&event).Error)
	assert.Equal(t, general.ID, event.TopicID)
}

func TestProcessSkipsDuplicates(t *testing.T) {
	im := setupImporter(t)
	writeUpload(t, im, "first.csv", testCSV)
	writeUpload(t, im, "second.csv", testCSV)

	_, err := im.Process("first.csv", testMapping)
	require.NoError(t, err)

	result, err := im.Process("second.csv", testMapping)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 2, result.Duplicates)
	assert.Equal(t, 1, result.Errors)

	var count int64
	im.db.Model(&models.Story{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestProcessRowIsolation(t *testing.T) {
	im := setupImporter(t)
	csv := `Headline,Link,Published,Topics,Thread,Source
Good row,https://example.com/good,2025-03-01,News,,Example
Bad date row,https://example.com/bad,202A-13-99,News,,Example
Another good row,https://example.com/also-good,2025-03-02,News,,Example
`
	writeUpload(t, im, "mixed.csv", csv)

	result, err := im.Process("mixed.csv", testMapping)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.ErrorDetails, 1)
	assert.Equal(t, 2, result.ErrorDetails[0].Row)

	var count int64
	im.db.Model(&models.Story{}).Count(&count)
	assert.Equal(t, int64(2), count)
}
