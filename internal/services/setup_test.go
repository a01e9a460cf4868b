package services

import (
	"testing"
	"time"

	"github.com/admiralorbiter/skien/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
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

	return db
}

func createTestTopic(t *testing.T, db *gorm.DB, name string) *models.Topic {
	t.Helper()
	topic := &models.Topic{Name: name}
	if err := db.Create(topic).Error; err != nil {
		t.Fatalf("Failed to create test topic: %v", err)
	}
	return topic
}

func createTestEvent(t *testing.T, db *gorm.DB, topicID uint, text string) *models.EventClaim {
	t.Helper()
	event := &models.EventClaim{
		TopicID:   topicID,
		ClaimText: text,
		EventDate: testDate,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return event
}

func createTestStory(t *testing.T, db *gorm.DB, url, title string) *models.Story {
	t.Helper()
	story := &models.Story{URL: url, Title: title, SourceName: "Test Wire"}
	if err := db.Create(story).Error; err != nil {
		t.Fatalf("Failed to create test story: %v", err)
	}
	return story
}
