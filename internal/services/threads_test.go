package services

import (
	"testing"
	"time"

	"github.com/admiralorbiter/skien/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThreadLinksOwningTopic(t *testing.T) {
	db := setupTestDB(t)
	service := NewThreadsService(db)
	topic := createTestTopic(t, db, "Budget")

	thread, err := service.Create(topic.ID, "FY26 budget fight", "", nil)
	require.NoError(t, err)
	require.NotNil(t, thread)

	var link models.ThreadTopic
	err = db.Where("thread_id = ? AND topic_id = ?", thread.ID, topic.ID).First(&link).Error
	require.NoError(t, err)
}

func TestCreateThreadRejectsFutureStartDate(t *testing.T) {
	db := setupTestDB(t)
	service := NewThreadsService(db)
	topic := createTestTopic(t, db, "Budget")

	future := time.Now().AddDate(0, 0, 2)
	_, err := service.Create(topic.ID, "Tomorrow's thread", "", &future)
	require.Error(t, err)
	assert.NotNil(t, Violations(err))
}

func TestAddEventEnforcesSameTopic(t *testing.T) {
	db := setupTestDB(t)
	service := NewThreadsService(db)
	topicA := createTestTopic(t, db, "Topic A")
	topicB := createTestTopic(t, db, "Topic B")

	thread, err := service.Create(topicA.ID, "Thread A", "", nil)
	require.NoError(t, err)

	stranger := createTestEvent(t, db, topicB.ID, "Event in another topic")
	_, err = service.AddEvent(thread, stranger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same topic")
}

func TestAddEventIdempotent(t *testing.T) {
	db := setupTestDB(t)
	service := NewThreadsService(db)
	topic := createTestTopic(t, db, "Topic")

	thread, err := service.Create(topic.ID, "Thread", "", nil)
	require.NoError(t, err)
	event := createTestEvent(t, db, topic.ID, "Event")

	added, err := service.AddEvent(thread, event)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = service.AddEvent(thread, event)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, int64(1), service.EventCount(thread))
}

func TestRemoveAbsentEventSucceeds(t *testing.T) {
	db := setupTestDB(t)
	service := NewThreadsService(db)
	topic := createTestTopic(t, db, "Topic")

	thread, err := service.Create(topic.ID, "Thread", "", nil)
	require.NoError(t, err)
	event := createTestEvent(t, db, topic.ID, "Never added")

	removed, err := service.RemoveEvent(thread, event)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMoveEvent(t *testing.T) {
	db := setupTestDB(t)
	service := NewThreadsService(db)
	topic := createTestTopic(t, db, "Topic")

	from, err := service.Create(topic.ID, "From", "", nil)
	require.NoError(t, err)
	to, err := service.Create(topic.ID, "To", "", nil)
	require.NoError(t, err)
	event := createTestEvent(t, db, topic.ID, "Mobile event")

	_, err = service.AddEvent(from, event)
	require.NoError(t, err)

	require.NoError(t, service.MoveEvent(from, to, event))
	assert.Equal(t, int64(0), service.EventCount(from))
	assert.Equal(t, int64(1), service.EventCount(to))
}

func TestSetStoriesReplacesAtomically(t *testing.T) {
	db := setupTestDB(t)
	service := NewThreadsService(db)
	topic := createTestTopic(t, db, "Topic")

	thread, err := service.Create(topic.ID, "Thread", "", nil)
	require.NoError(t, err)

	s1 := createTestStory(t, db, "https://example.com/1", "One")
	s2 := createTestStory(t, db, "https://example.com/2", "Two")
	s3 := createTestStory(t, db, "https://example.com/3", "Three")

	require.NoError(t, service.SetStories(thread, []uint{s1.ID, s2.ID}))
	assert.Len(t, service.Stories(thread), 2)

	// Replacing drops s1/s2 and keeps only s3
	require.NoError(t, service.SetStories(thread, []uint{s3.ID}))
	stories := service.Stories(thread)
	require.Len(t, stories, 1)
	assert.Equal(t, s3.ID, stories[0].ID)

	// Same set again is a no-op that still succeeds
	require.NoError(t, service.SetStories(thread, []uint{s3.ID}))
	assert.Len(t, service.Stories(thread), 1)

	// Empty set clears everything
	require.NoError(t, service.SetStories(thread, nil))
	assert.Empty(t, service.Stories(thread))
}

func TestThreadDateRangeAndStartDate(t *testing.T) {
	db := setupTestDB(t)
	service := NewThreadsService(db)
	topic := createTestTopic(t, db, "Topic")

	thread, err := service.Create(topic.ID, "Thread", "", nil)
	require.NoError(t, err)

	first, last := service.DateRange(thread)
	assert.Nil(t, first)
	assert.Nil(t, last)

	early := &models.EventClaim{TopicID: topic.ID, ClaimText: "Early", EventDate: testDate}
	late := &models.EventClaim{TopicID: topic.ID, ClaimText: "Late", EventDate: testDate.AddDate(0, 1, 0)}
	require.NoError(t, db.Create(early).Error)
	require.NoError(t, db.Create(late).Error)
	_, err = service.AddEvent(thread, early)
	require.NoError(t, err)
	_, err = service.AddEvent(thread, late)
	require.NoError(t, err)

	first, last = service.DateRange(thread)
	require.NotNil(t, first)
	require.NotNil(t, last)
	assert.True(t, first.Equal(early.EventDate))
	assert.True(t, last.Equal(late.EventDate))

	updated, err := service.UpdateStartDateFromEvents(thread)
	require.NoError(t, err)
	assert.True(t, updated)
	require.NotNil(t, thread.StartDate)
	assert.True(t, thread.StartDate.Equal(early.EventDate))
}
