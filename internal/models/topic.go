package models

import (
	"regexp"
	"strings"
	"time"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Topic represents a top-level subject-matter grouping that owns threads
// and event claims
type Topic struct {
	ID          uint      `json:"id" db:"id" gorm:"primaryKey"`
	Name        string    `json:"name" db:"name" gorm:"size:200;uniqueIndex;not null"`
	Description string    `json:"description" db:"description" gorm:"type:text"`
	Color       string    `json:"color" db:"color" gorm:"size:7"` // Hex color code
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the Topic model
func (Topic) TableName() string {
	return "topics"
}

// IsValid reports whether the topic has been persisted
func (t *Topic) IsValid() bool {
	return t.ID != 0
}

// Validate returns every violated constraint as a human-readable message
func (t *Topic) Validate() []string {
	var errs []string

	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, "Topic name cannot be empty")
	}
	if len(t.Name) > 200 {
		errs = append(errs, "Topic name is too long (max 200 characters)")
	}
	if t.Color != "" && !hexColorPattern.MatchString(t.Color) {
		errs = append(errs, "Color must be a valid hex color code (e.g., #FF0000)")
	}

	return errs
}
