// Package importer implements the three-phase CSV import pipeline:
// upload, preview, process. Phases are stateless between calls; the
// uploaded file on disk is the only carried state.
package importer

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Importer runs CSV imports against the content store
type Importer struct {
	db        *gorm.DB
	uploadDir string
}

// New creates an Importer storing uploads under uploadDir
func New(db *gorm.DB, uploadDir string) *Importer {
	return &Importer{db: db, uploadDir: uploadDir}
}

// Canonical row fields a column mapping may target. "date" is accepted as
// an alias for "published_at".
var knownFields = []string{
	"title",
	"url",
	"source_name",
	"author",
	"published_at",
	"summary",
	"raw_text",
	"topics",
	"thread",
	"event_claim",
}

// RowError records a failure tied to a 1-based data row number
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// normalizeMapping resolves aliases and drops entries with empty source
// columns. Unknown target fields are rejected.
func normalizeMapping(mapping map[string]string) (map[string]string, error) {
	normalized := make(map[string]string, len(mapping))
	for field, column := range mapping {
		field = strings.TrimSpace(strings.ToLower(field))
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		if field == "date" {
			field = "published_at"
		}
		if !isKnownField(field) {
			return nil, fmt.Errorf("unknown mapping field: %s", field)
		}
		normalized[field] = column
	}
	return normalized, nil
}

func isKnownField(field string) bool {
	for _, f := range knownFields {
		if f == field {
			return true
		}
	}
	return false
}

// applyMapping projects one CSV record into mapped fields. Missing or
// empty source cells leave the field absent rather than producing a
// literal empty or "NaN" value.
func applyMapping(header []string, record []string, mapping map[string]string) map[string]string {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	mapped := make(map[string]string)
	for field, column := range mapping {
		i, ok := index[column]
		if !ok || i >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[i])
		if value == "" || strings.EqualFold(value, "nan") {
			continue
		}
		mapped[field] = value
	}
	return mapped
}
