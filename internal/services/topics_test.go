package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTopic(t *testing.T) {
	db := setupTestDB(t)
	service := NewTopicsService(db)

	topic, err := service.Create("City Budget", "Municipal budget coverage", "#3366FF")
	require.NoError(t, err)
	assert.NotZero(t, topic.ID)
}

func TestCreateTopicDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	service := NewTopicsService(db)

	_, err := service.Create("Housing", "", "")
	require.NoError(t, err)

	_, err = service.Create("Housing", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateTopicInvalidColor(t *testing.T) {
	db := setupTestDB(t)
	service := NewTopicsService(db)

	_, err := service.Create("Transit", "", "blue")
	require.Error(t, err)
	assert.NotNil(t, Violations(err))
}

func TestFindOrCreateTopic(t *testing.T) {
	db := setupTestDB(t)
	service := NewTopicsService(db)

	first, err := service.FindOrCreate("Education")
	require.NoError(t, err)

	second, err := service.FindOrCreate("Education")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestTopicCounts(t *testing.T) {
	db := setupTestDB(t)
	service := NewTopicsService(db)
	threads := NewThreadsService(db)

	topic := createTestTopic(t, db, "Counted")
	assert.Equal(t, int64(0), service.ThreadCount(topic.ID))
	assert.Equal(t, int64(0), service.EventCount(topic.ID))

	_, err := threads.Create(topic.ID, "Thread", "", nil)
	require.NoError(t, err)
	createTestEvent(t, db, topic.ID, "Event one")
	createTestEvent(t, db, topic.ID, "Event two")

	assert.Equal(t, int64(1), service.ThreadCount(topic.ID))
	assert.Equal(t, int64(2), service.EventCount(topic.ID))
}

func TestTopicFindByNameMiss(t *testing.T) {
	db := setupTestDB(t)
	service := NewTopicsService(db)

	topic, err := service.FindByName("nothing here")
	require.NoError(t, err)
	assert.Nil(t, topic)
}
