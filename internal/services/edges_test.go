package services

import (
	"testing"

	"github.com/admiralorbiter/skien/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRelationship(t *testing.T) {
	db := setupTestDB(t)
	service := NewEdgesService(db)
	topic := createTestTopic(t, db, "Topic")
	a := createTestEvent(t, db, topic.ID, "Event A")
	b := createTestEvent(t, db, topic.ID, "Event B")

	edge, reason, err := service.CreateRelationship(a, b, models.RelationFollowUp)
	require.NoError(t, err)
	assert.Empty(t, reason)
	require.NotNil(t, edge)
	assert.Equal(t, a.ID, edge.SrcEventID)
	assert.Equal(t, b.ID, edge.DstEventID)
}

func TestCreateRelationshipRejectsSelfLoop(t *testing.T) {
	db := setupTestDB(t)
	service := NewEdgesService(db)
	topic := createTestTopic(t, db, "Topic")
	a := createTestEvent(t, db, topic.ID, "Event A")

	edge, reason, err := service.CreateRelationship(a, a, models.RelationFollowUp)
	require.NoError(t, err)
	assert.Nil(t, edge)
	assert.NotEmpty(t, reason)
	assert.Empty(t, service.FindByEvent(a.ID))
}

func TestCreateRelationshipRejectsCrossTopic(t *testing.T) {
	db := setupTestDB(t)
	service := NewEdgesService(db)
	topicA := createTestTopic(t, db, "Topic A")
	topicB := createTestTopic(t, db, "Topic B")
	a := createTestEvent(t, db, topicA.ID, "Event A")
	b := createTestEvent(t, db, topicB.ID, "Event B")

	edge, reason, err := service.CreateRelationship(a, b, models.RelationRefutes)
	require.NoError(t, err)
	assert.Nil(t, edge)
	assert.NotEmpty(t, reason)
}

func TestCreateRelationshipRejectsExistingEitherDirection(t *testing.T) {
	db := setupTestDB(t)
	service := NewEdgesService(db)
	topic := createTestTopic(t, db, "Topic")
	a := createTestEvent(t, db, topic.ID, "Event A")
	b := createTestEvent(t, db, topic.ID, "Event B")

	_, reason, err := service.CreateRelationship(a, b, models.RelationFollowUp)
	require.NoError(t, err)
	require.Empty(t, reason)

	// Same direction
	edge, reason, err := service.CreateRelationship(a, b, models.RelationRefutes)
	require.NoError(t, err)
	assert.Nil(t, edge)
	assert.NotEmpty(t, reason)

	// Opposite direction counts too
	edge, reason, err = service.CreateRelationship(b, a, models.RelationRefutes)
	require.NoError(t, err)
	assert.Nil(t, edge)
	assert.NotEmpty(t, reason)

	assert.Len(t, service.FindBetween(a.ID, b.ID), 1)
}

func TestReversePersists(t *testing.T) {
	db := setupTestDB(t)
	service := NewEdgesService(db)
	topic := createTestTopic(t, db, "Topic")
	a := createTestEvent(t, db, topic.ID, "Event A")
	b := createTestEvent(t, db, topic.ID, "Event B")

	edge, _, err := service.CreateRelationship(a, b, models.RelationRepeats)
	require.NoError(t, err)

	require.NoError(t, service.Reverse(edge))
	assert.Equal(t, b.ID, edge.SrcEventID)
	assert.Equal(t, a.ID, edge.DstEventID)

	stored, err := service.FindByID(edge.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, b.ID, stored.SrcEventID)
	assert.Equal(t, a.ID, stored.DstEventID)
}

func TestReverseOneWayRelationFails(t *testing.T) {
	db := setupTestDB(t)
	service := NewEdgesService(db)
	topic := createTestTopic(t, db, "Topic")
	a := createTestEvent(t, db, topic.ID, "Event A")
	b := createTestEvent(t, db, topic.ID, "Event B")

	edge, _, err := service.CreateRelationship(a, b, models.RelationRefutes)
	require.NoError(t, err)

	err = service.Reverse(edge)
	assert.ErrorIs(t, err, models.ErrNotReversible)

	stored, err := service.FindByID(edge.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, stored.SrcEventID)
}

func TestRelationStats(t *testing.T) {
	db := setupTestDB(t)
	service := NewEdgesService(db)
	topic := createTestTopic(t, db, "Topic")
	a := createTestEvent(t, db, topic.ID, "Event A")
	b := createTestEvent(t, db, topic.ID, "Event B")
	c := createTestEvent(t, db, topic.ID, "Event C")

	_, _, err := service.CreateRelationship(a, b, models.RelationFollowUp)
	require.NoError(t, err)
	_, _, err = service.CreateRelationship(b, c, models.RelationFollowUp)
	require.NoError(t, err)

	stats := service.RelationStats()
	assert.Equal(t, int64(2), stats[models.RelationFollowUp])
	assert.Zero(t, stats[models.RelationRefutes])
}
