package models

import (
	"strings"
	"time"
)

// Tag is a unique, case-insensitive categorization label. Names are
// normalized before storage; see NormalizeTagName.
type Tag struct {
	ID        uint      `json:"id" db:"id" gorm:"primaryKey"`
	Name      string    `json:"name" db:"name" gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the Tag model
func (Tag) TableName() string {
	return "tags"
}

// IsValid reports whether the tag has been persisted
func (t *Tag) IsValid() bool {
	return t.ID != 0
}

// Validate returns every violated constraint as a human-readable message
func (t *Tag) Validate() []string {
	var errs []string

	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, "Tag name cannot be empty")
	}
	if len(t.Name) > 100 {
		errs = append(errs, "Tag name is too long (max 100 characters)")
	}

	return errs
}

// NormalizeTagName trims, lowercases and replaces spaces with underscores
func NormalizeTagName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Normalize rewrites the tag's name into its canonical stored form
func (t *Tag) Normalize() {
	t.Name = NormalizeTagName(t.Name)
}
