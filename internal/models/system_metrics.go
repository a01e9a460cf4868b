package models

import (
	"strings"
	"time"
)

// SystemMetrics is a per-name numeric gauge with an optional JSON payload,
// upserted by name.
type SystemMetrics struct {
	ID          uint      `json:"id" db:"id" gorm:"primaryKey"`
	MetricName  string    `json:"metric_name" db:"metric_name" gorm:"size:100;uniqueIndex;not null"`
	MetricValue float64   `json:"metric_value" db:"metric_value" gorm:"not null"`
	MetricData  string    `json:"metric_data" db:"metric_data" gorm:"type:text"` // JSON string for complex data
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the SystemMetrics model
func (SystemMetrics) TableName() string {
	return "system_metrics"
}

// IsValid reports whether the metric has been persisted
func (m *SystemMetrics) IsValid() bool {
	return m.ID != 0
}

// Validate returns every violated constraint as a human-readable message
func (m *SystemMetrics) Validate() []string {
	var errs []string

	if strings.TrimSpace(m.MetricName) == "" {
		errs = append(errs, "Metric name is required")
	}
	if len(m.MetricName) > 100 {
		errs = append(errs, "Metric name is too long (max 100 characters)")
	}

	return errs
}
