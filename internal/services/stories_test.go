package services

import (
	"testing"
	"time"

	"github.com/admiralorbiter/skien/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStoryCanonicalizesURL(t *testing.T) {
	db := setupTestDB(t)
	service := NewStoriesService(db)

	story := &models.Story{
		URL:        "https://example.com/article?utm_source=feed&id=7",
		Title:      "A headline",
		SourceName: "Example",
	}
	require.NoError(t, service.Create(story))
	assert.Equal(t, "https://example.com/article?id=7", story.URL)
}

func TestCreateStoryRejectsDuplicateURL(t *testing.T) {
	db := setupTestDB(t)
	service := NewStoriesService(db)

	first := &models.Story{URL: "https://example.com/a", Title: "First", SourceName: "Example"}
	require.NoError(t, service.Create(first))

	// Same destination after canonicalization
	second := &models.Story{URL: "https://example.com/a?utm_campaign=x", Title: "Second", SourceName: "Example"}
	err := service.Create(second)
	require.Error(t, err)

	violations := Violations(err)
	require.NotNil(t, violations)
	assert.Contains(t, violations[0], "already exists")
}

func TestAddTagIdempotent(t *testing.T) {
	db := setupTestDB(t)
	service := NewStoriesService(db)
	story := createTestStory(t, db, "https://example.com/tagged", "Tagged")

	tag, added, err := service.AddTag(story, "  Breaking News ")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "breaking_news", tag.Name)

	again, added, err := service.AddTag(story, "breaking news")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, tag.ID, again.ID)

	assert.Len(t, service.Tags(story), 1)
}

func TestRemoveAbsentTagSucceeds(t *testing.T) {
	db := setupTestDB(t)
	service := NewStoriesService(db)
	story := createTestStory(t, db, "https://example.com/untagged", "Untagged")

	removed, err := service.RemoveTag(story, "no_such_tag")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestAddRemoveStoryTopic(t *testing.T) {
	db := setupTestDB(t)
	service := NewStoriesService(db)
	topic := createTestTopic(t, db, "Housing")
	story := createTestStory(t, db, "https://example.com/housing", "Housing piece")

	added, err := service.AddTopic(story, topic.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = service.AddTopic(story, topic.ID)
	require.NoError(t, err)
	assert.False(t, added)

	topics := service.Topics(story)
	require.Len(t, topics, 1)
	assert.Equal(t, "Housing", topics[0].Name)

	removed, err := service.RemoveTopic(story, topic.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = service.RemoveTopic(story, topic.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFindDuplicatesExactURL(t *testing.T) {
	db := setupTestDB(t)
	service := NewStoriesService(db)
	createTestStory(t, db, "https://example.com/dup", "Stored story")

	candidate := &models.Story{URL: "https://example.com/dup?utm_source=x", Title: "Another title entirely"}
	matches := service.FindDuplicates(candidate)

	require.NotEmpty(t, matches)
	assert.Equal(t, "Exact URL match", matches[0].Reason)
	assert.Equal(t, 1.0, matches[0].Confidence)
}

func TestFindDuplicatesSimilarTitle(t *testing.T) {
	db := setupTestDB(t)
	service := NewStoriesService(db)
	createTestStory(t, db, "https://example.com/t1", "City council approves new housing development")

	candidate := &models.Story{
		URL:   "https://other.com/t2",
		Title: "City council approves new housing developments",
	}
	matches := service.FindDuplicates(candidate)

	require.NotEmpty(t, matches)
	assert.Contains(t, matches[0].Reason, "Similar title")
	assert.GreaterOrEqual(t, matches[0].Confidence, 0.92)
}

func TestFindDuplicatesSameSourceWindow(t *testing.T) {
	db := setupTestDB(t)
	service := NewStoriesService(db)

	published := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	stored := &models.Story{
		URL:         "https://example.com/near",
		Title:       "Completely unrelated headline",
		SourceName:  "Example",
		PublishedAt: &published,
	}
	require.NoError(t, db.Create(stored).Error)

	nearby := published.AddDate(0, 0, 2)
	candidate := &models.Story{
		URL:         "https://example.com/other",
		Title:       "A different headline about something else",
		SourceName:  "Example",
		PublishedAt: &nearby,
	}
	matches := service.FindDuplicates(candidate)

	require.NotEmpty(t, matches)
	assert.Equal(t, "Same source within 3 days", matches[0].Reason)
	assert.Equal(t, 0.8, matches[0].Confidence)
}

func TestDeleteStoryClearsPrimaryReferences(t *testing.T) {
	db := setupTestDB(t)
	service := NewStoriesService(db)
	topic := createTestTopic(t, db, "Transit")
	story := createTestStory(t, db, "https://example.com/primary", "Primary")

	event := &models.EventClaim{
		TopicID:        topic.ID,
		StoryPrimaryID: &story.ID,
		ClaimText:      "Something happened",
		EventDate:      testDate,
	}
	require.NoError(t, db.Create(event).Error)

	require.NoError(t, service.Delete(story))

	var reloaded models.EventClaim
	require.NoError(t, db.First(&reloaded, event.ID).Error)
	assert.Nil(t, reloaded.StoryPrimaryID)
}
