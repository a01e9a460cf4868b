package services

import (
	"testing"
	"time"

	"github.com/admiralorbiter/skien/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventCollectsAllViolations(t *testing.T) {
	db := setupTestDB(t)
	service := NewEventsService(db)

	importance := 9
	_, err := service.Create(0, "", time.Time{}, &importance, nil)
	require.Error(t, err)

	violations := Violations(err)
	require.NotNil(t, violations)
	assert.GreaterOrEqual(t, len(violations), 3)
}

func TestRelatedEventsDirections(t *testing.T) {
	db := setupTestDB(t)
	events := NewEventsService(db)
	edges := NewEdgesService(db)
	topic := createTestTopic(t, db, "Topic")

	center := createTestEvent(t, db, topic.ID, "Center")
	downstream := createTestEvent(t, db, topic.ID, "Downstream")
	upstream := createTestEvent(t, db, topic.ID, "Upstream")

	_, _, err := edges.CreateRelationship(center, downstream, models.RelationFollowUp)
	require.NoError(t, err)
	_, _, err = edges.CreateRelationship(upstream, center, models.RelationRefutes)
	require.NoError(t, err)

	related := events.RelatedEvents(center.ID, nil)
	require.Len(t, related, 2)

	byDirection := map[string]RelatedEvent{}
	for _, r := range related {
		byDirection[r.Direction] = r
	}
	assert.Equal(t, downstream.ID, byDirection["outgoing"].Event.ID)
	assert.Equal(t, models.RelationFollowUp, byDirection["outgoing"].Relation)
	assert.Equal(t, upstream.ID, byDirection["incoming"].Event.ID)
	assert.Equal(t, models.RelationRefutes, byDirection["incoming"].Relation)
}

func TestRelatedEventsRelationFilter(t *testing.T) {
	db := setupTestDB(t)
	events := NewEventsService(db)
	edges := NewEdgesService(db)
	topic := createTestTopic(t, db, "Topic")

	center := createTestEvent(t, db, topic.ID, "Center")
	other := createTestEvent(t, db, topic.ID, "Other")
	third := createTestEvent(t, db, topic.ID, "Third")

	_, _, err := edges.CreateRelationship(center, other, models.RelationFollowUp)
	require.NoError(t, err)
	_, _, err = edges.CreateRelationship(center, third, models.RelationRefutes)
	require.NoError(t, err)

	relation := models.RelationRefutes
	related := events.RelatedEvents(center.ID, &relation)
	require.Len(t, related, 1)
	assert.Equal(t, third.ID, related[0].Event.ID)
}

func TestAddStoryIdempotentAndAllStoriesDedup(t *testing.T) {
	db := setupTestDB(t)
	service := NewEventsService(db)
	topic := createTestTopic(t, db, "Topic")
	primary := createTestStory(t, db, "https://example.com/primary", "Primary")
	extra := createTestStory(t, db, "https://example.com/extra", "Extra")

	event, err := service.Create(topic.ID, "Claim", testDate, nil, &primary.ID)
	require.NoError(t, err)

	added, err := service.AddStory(event, extra.ID, "supporting coverage")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = service.AddStory(event, extra.ID, "")
	require.NoError(t, err)
	assert.False(t, added)

	// Linking the primary story again must not double-count it
	_, err = service.AddStory(event, primary.ID, "")
	require.NoError(t, err)

	stories := service.AllStories(event)
	require.Len(t, stories, 2)
	assert.Equal(t, primary.ID, stories[0].ID)
}

func TestFindUnsortedEvents(t *testing.T) {
	db := setupTestDB(t)
	events := NewEventsService(db)
	threads := NewThreadsService(db)
	topic := createTestTopic(t, db, "Topic")

	sorted := createTestEvent(t, db, topic.ID, "Sorted")
	unsorted := createTestEvent(t, db, topic.ID, "Unsorted")

	thread, err := threads.Create(topic.ID, "Thread", "", nil)
	require.NoError(t, err)
	_, err = threads.AddEvent(thread, sorted)
	require.NoError(t, err)

	result := events.FindUnsorted(topic.ID)
	require.Len(t, result, 1)
	assert.Equal(t, unsorted.ID, result[0].ID)
}

func TestDeleteEventCleansUpJunctions(t *testing.T) {
	db := setupTestDB(t)
	events := NewEventsService(db)
	edges := NewEdgesService(db)
	threads := NewThreadsService(db)
	topic := createTestTopic(t, db, "Topic")

	event := createTestEvent(t, db, topic.ID, "Doomed")
	other := createTestEvent(t, db, topic.ID, "Survivor")
	story := createTestStory(t, db, "https://example.com/doomed", "Doomed coverage")

	_, _, err := edges.CreateRelationship(event, other, models.RelationFollowUp)
	require.NoError(t, err)
	_, err = events.AddStory(event, story.ID, "")
	require.NoError(t, err)
	thread, err := threads.Create(topic.ID, "Thread", "", nil)
	require.NoError(t, err)
	_, err = threads.AddEvent(thread, event)
	require.NoError(t, err)

	require.NoError(t, events.Delete(event))

	assert.Empty(t, edges.FindByEvent(event.ID))
	var linkCount int64
	db.Model(&models.EventStoryLink{}).Where("event_id = ?", event.ID).Count(&linkCount)
	assert.Zero(t, linkCount)
	assert.Equal(t, int64(0), threads.EventCount(thread))
}
