package models

import "time"

// StoryTag joins a story to a tag
type StoryTag struct {
	ID        uint      `json:"id" db:"id" gorm:"primaryKey"`
	StoryID   uint      `json:"story_id" db:"story_id" gorm:"not null;index;uniqueIndex:uk_story_tag_unique"`
	TagID     uint      `json:"tag_id" db:"tag_id" gorm:"not null;index;uniqueIndex:uk_story_tag_unique"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Story Story `json:"story,omitempty" gorm:"foreignKey:StoryID;references:ID"`
	Tag   Tag   `json:"tag,omitempty" gorm:"foreignKey:TagID;references:ID"`
}

// TableName sets the table name for the StoryTag model
func (StoryTag) TableName() string {
	return "story_tags"
}

// IsValid reports whether the link has been persisted
func (l *StoryTag) IsValid() bool {
	return l.ID != 0
}

// Validate returns every violated constraint as a human-readable message
func (l *StoryTag) Validate() []string {
	var errs []string

	if l.StoryID == 0 {
		errs = append(errs, "Story ID is required")
	}
	if l.TagID == 0 {
		errs = append(errs, "Tag ID is required")
	}

	return errs
}
