package models

import (
	"log"
	"net/url"
	"strings"
	"time"
)

// Story represents a captured news article, the primary source document
type Story struct {
	ID         uint       `json:"id" db:"id" gorm:"primaryKey"`
	URL        string     `json:"url" db:"url" gorm:"size:2048;uniqueIndex;not null"`
	Title      string     `json:"title" db:"title" gorm:"size:500;not null"`
	SourceName string     `json:"source_name" db:"source_name" gorm:"size:200;not null;index"`
	Author     string     `json:"author" db:"author" gorm:"size:200"`
	PublishedAt *time.Time `json:"published_at" db:"published_at" gorm:"index"`
	CapturedAt time.Time  `json:"captured_at" db:"captured_at" gorm:"autoCreateTime;index"`
	Summary    string     `json:"summary" db:"summary" gorm:"type:text"`
	RawText    string     `json:"raw_text" db:"raw_text" gorm:"type:text"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the Story model
func (Story) TableName() string {
	return "stories"
}

// IsValid reports whether the story has been persisted
func (s *Story) IsValid() bool {
	return s.ID != 0
}

// Validate returns every violated constraint as a human-readable message
func (s *Story) Validate() []string {
	var errs []string

	if strings.TrimSpace(s.URL) == "" {
		errs = append(errs, "URL is required")
	} else {
		if !isValidURL(s.URL) {
			errs = append(errs, "URL format is invalid")
		}
		if len(s.URL) > 2048 {
			errs = append(errs, "URL is too long (max 2048 characters)")
		}
	}
	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, "Title is required")
	}
	if len(s.Title) > 500 {
		errs = append(errs, "Title is too long (max 500 characters)")
	}
	if strings.TrimSpace(s.SourceName) == "" {
		errs = append(errs, "Source name is required")
	}
	if len(s.SourceName) > 200 {
		errs = append(errs, "Source name is too long (max 200 characters)")
	}
	if len(s.Author) > 200 {
		errs = append(errs, "Author name is too long (max 200 characters)")
	}
	if s.PublishedAt != nil && dateInFuture(*s.PublishedAt) {
		errs = append(errs, "Published date cannot be in the future")
	}

	return errs
}

// isValidURL checks that a URL has both a scheme and a host
func isValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// trackingParamPrefixes are stripped from query strings during URL
// canonicalization. Everything else is preserved.
var trackingParamPrefixes = []string{"utm_", "fbclid", "gclid"}

// CanonicalizeURL rewrites the story's URL in place with tracking query
// parameters removed. A URL that fails to parse is left unchanged.
func (s *Story) CanonicalizeURL() {
	if s.URL == "" {
		return
	}

	parsed, err := url.Parse(s.URL)
	if err != nil {
		log.Printf("Failed to canonicalize URL %s: %v", s.URL, err)
		return
	}

	if parsed.RawQuery != "" {
		var kept []string
		for _, param := range strings.Split(parsed.RawQuery, "&") {
			if !hasTrackingPrefix(param) {
				kept = append(kept, param)
			}
		}
		parsed.RawQuery = strings.Join(kept, "&")
	}

	s.URL = parsed.String()
}

func hasTrackingPrefix(param string) bool {
	for _, prefix := range trackingParamPrefixes {
		if strings.HasPrefix(param, prefix) {
			return true
		}
	}
	return false
}

// Domain returns the host portion of the story's URL, or an empty string
// when the URL cannot be parsed
func (s *Story) Domain() string {
	parsed, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
