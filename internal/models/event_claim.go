package models

import (
	"strings"
	"time"
)

// EventClaim represents a single dated, attributable assertion or happening,
// the atomic unit of the story graph
type EventClaim struct {
	ID             uint      `json:"id" db:"id" gorm:"primaryKey"`
	TopicID        uint      `json:"topic_id" db:"topic_id" gorm:"not null;index"`
	StoryPrimaryID *uint     `json:"story_primary_id" db:"story_primary_id" gorm:"index"`
	ClaimText      string    `json:"claim_text" db:"claim_text" gorm:"type:text;not null"`
	EventDate      time.Time `json:"event_date" db:"event_date" gorm:"not null;index"`
	Importance     *int      `json:"importance" db:"importance" gorm:"index"` // 1..5 or null
	CreatedAt      time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Topic        Topic  `json:"topic,omitempty" gorm:"foreignKey:TopicID;references:ID"`
	PrimaryStory *Story `json:"primary_story,omitempty" gorm:"foreignKey:StoryPrimaryID;references:ID"`
}

// TableName sets the table name for the EventClaim model
func (EventClaim) TableName() string {
	return "event_claims"
}

// IsValid reports whether the event claim has been persisted
func (e *EventClaim) IsValid() bool {
	return e.ID != 0
}

// Validate returns every violated constraint as a human-readable message
func (e *EventClaim) Validate() []string {
	var errs []string

	if strings.TrimSpace(e.ClaimText) == "" {
		errs = append(errs, "Claim text cannot be empty")
	}
	if e.EventDate.IsZero() {
		errs = append(errs, "Event date is required")
	} else if dateInFuture(e.EventDate) {
		errs = append(errs, "Event date cannot be in the future")
	}
	if e.Importance != nil && (*e.Importance < 1 || *e.Importance > 5) {
		errs = append(errs, "Importance must be between 1 and 5")
	}
	if e.TopicID == 0 {
		errs = append(errs, "Event must belong to a topic")
	}

	return errs
}

// CanConnectTo reports whether an edge from this event to other is allowed.
// The reason is empty when the connection is permitted.
func (e *EventClaim) CanConnectTo(other *EventClaim) (bool, string) {
	if other == nil {
		return false, "Target event is required"
	}
	if e.ID == other.ID {
		return false, "Cannot connect event to itself"
	}
	if e.TopicID != other.TopicID {
		return false, "Events must be in the same topic to connect"
	}
	return true, ""
}
