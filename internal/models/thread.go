package models

import (
	"strings"
	"time"
)

// Thread represents a curated narrative sequence of event claims within a
// topic. Membership of events, stories and additional topics lives in the
// thread_events, thread_stories and thread_topics junctions.
type Thread struct {
	ID          uint       `json:"id" db:"id" gorm:"primaryKey"`
	TopicID     uint       `json:"topic_id" db:"topic_id" gorm:"not null;index"`
	Name        string     `json:"name" db:"name" gorm:"size:200;not null"`
	Description string     `json:"description" db:"description" gorm:"type:text"`
	StartDate   *time.Time `json:"start_date" db:"start_date" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Topic Topic `json:"topic,omitempty" gorm:"foreignKey:TopicID;references:ID"`
}

// TableName sets the table name for the Thread model
func (Thread) TableName() string {
	return "threads"
}

// IsValid reports whether the thread has been persisted
func (t *Thread) IsValid() bool {
	return t.ID != 0
}

// Validate returns every violated constraint as a human-readable message
func (t *Thread) Validate() []string {
	var errs []string

	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, "Thread name cannot be empty")
	}
	if len(t.Name) > 200 {
		errs = append(errs, "Thread name is too long (max 200 characters)")
	}
	if t.StartDate != nil && dateInFuture(*t.StartDate) {
		errs = append(errs, "Start date cannot be in the future")
	}
	if t.TopicID == 0 {
		errs = append(errs, "Thread must belong to a topic")
	}

	return errs
}
