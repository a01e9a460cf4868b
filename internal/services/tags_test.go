package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagFindOrCreateNormalizes(t *testing.T) {
	db := setupTestDB(t)
	service := NewTagsService(db)

	tag, err := service.FindOrCreate("  Public Safety ")
	require.NoError(t, err)
	assert.Equal(t, "public_safety", tag.Name)

	same, err := service.FindOrCreate("PUBLIC SAFETY")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, same.ID)

	assert.Len(t, service.AllOrdered(), 1)
}

func TestTagFindOrCreateEmptyRejected(t *testing.T) {
	db := setupTestDB(t)
	service := NewTagsService(db)

	_, err := service.FindOrCreate("   ")
	require.Error(t, err)
	assert.NotNil(t, Violations(err))
}

func TestPopularTags(t *testing.T) {
	db := setupTestDB(t)
	tags := NewTagsService(db)
	stories := NewStoriesService(db)

	s1 := createTestStory(t, db, "https://example.com/p1", "One")
	s2 := createTestStory(t, db, "https://example.com/p2", "Two")

	_, _, err := stories.AddTag(s1, "common")
	require.NoError(t, err)
	_, _, err = stories.AddTag(s2, "common")
	require.NoError(t, err)
	_, _, err = stories.AddTag(s1, "rare")
	require.NoError(t, err)
	_, err = tags.FindOrCreate("unused")
	require.NoError(t, err)

	popular := tags.PopularTags(10)
	require.Len(t, popular, 3)
	assert.Equal(t, "common", popular[0].Tag.Name)
	assert.Equal(t, int64(2), popular[0].StoryCount)
	assert.Equal(t, int64(0), popular[2].StoryCount)

	total, used := tags.UsageStats()
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), used)
}

func TestTagDeleteRemovesLinks(t *testing.T) {
	db := setupTestDB(t)
	tags := NewTagsService(db)
	stories := NewStoriesService(db)

	story := createTestStory(t, db, "https://example.com/tagged", "Tagged")
	tag, _, err := stories.AddTag(story, "doomed")
	require.NoError(t, err)

	require.NoError(t, tags.Delete(tag))
	assert.Empty(t, stories.Tags(story))
	assert.Empty(t, tags.AllOrdered())
}
