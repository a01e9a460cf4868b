// Package models contains all data models for the skien application
package models

import (
	"time"

	"gorm.io/gorm"
)

// AllModels returns a slice of all model types for database migrations
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&AdminLog{},
		&SystemMetrics{},
		&Topic{},
		&Thread{},
		&EventClaim{},
		&Edge{},
		&Story{},
		&Tag{},
		&EventStoryLink{},
		&StoryTag{},
		&StoryTopic{},
		&ThreadStory{},
		&ThreadTopic{},
		&ThreadEvent{},
	}
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// startOfDay truncates a timestamp to its UTC calendar date.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateInFuture reports whether t falls on a calendar date after today.
func dateInFuture(t time.Time) bool {
	return startOfDay(t).After(startOfDay(time.Now()))
}
