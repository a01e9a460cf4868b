package models

import "time"

// EventStoryLink joins an event claim to a supporting story. It is a full
// junction entity because it carries its own payload (the note).
type EventStoryLink struct {
	ID        uint      `json:"id" db:"id" gorm:"primaryKey"`
	EventID   uint      `json:"event_id" db:"event_id" gorm:"not null;index;uniqueIndex:uk_event_story_unique"`
	StoryID   uint      `json:"story_id" db:"story_id" gorm:"not null;index;uniqueIndex:uk_event_story_unique"`
	Note      string    `json:"note" db:"note" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Event EventClaim `json:"event,omitempty" gorm:"foreignKey:EventID;references:ID"`
	Story Story      `json:"story,omitempty" gorm:"foreignKey:StoryID;references:ID"`
}

// TableName sets the table name for the EventStoryLink model
func (EventStoryLink) TableName() string {
	return "event_story_links"
}

// IsValid reports whether the link has been persisted
func (l *EventStoryLink) IsValid() bool {
	return l.ID != 0
}

// Validate returns every violated constraint as a human-readable message
func (l *EventStoryLink) Validate() []string {
	var errs []string

	if l.EventID == 0 {
		errs = append(errs, "Event ID is required")
	}
	if l.StoryID == 0 {
		errs = append(errs, "Story ID is required")
	}

	return errs
}
