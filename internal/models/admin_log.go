package models

import (
	"strings"
	"time"
)

// AdminLog is an append-only audit record of an administrator action.
// Rows are never updated or deleted by application logic.
type AdminLog struct {
	ID           uint      `json:"id" db:"id" gorm:"primaryKey"`
	AdminUserID  uint      `json:"admin_user_id" db:"admin_user_id" gorm:"not null;index"`
	Action       string    `json:"action" db:"action" gorm:"size:100;not null"` // CREATE_USER, UPDATE_STORY, IMPORT_CSV, ...
	TargetID     *uint     `json:"target_id" db:"target_id" gorm:"index"`
	Details      string    `json:"details" db:"details" gorm:"type:text"`
	IPAddress    string    `json:"ip_address" db:"ip_address" gorm:"size:45"`
	UserAgent    string    `json:"user_agent" db:"user_agent" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the AdminLog model
func (AdminLog) TableName() string {
	return "admin_logs"
}

// IsValid reports whether the log entry has been persisted
func (l *AdminLog) IsValid() bool {
	return l.ID != 0
}

// Validate returns every violated constraint as a human-readable message
func (l *AdminLog) Validate() []string {
	var errs []string

	if l.AdminUserID == 0 {
		errs = append(errs, "Admin user is required")
	}
	if strings.TrimSpace(l.Action) == "" {
		errs = append(errs, "Action is required")
	}
	if len(l.Action) > 100 {
		errs = append(errs, "Action is too long (max 100 characters)")
	}

	return errs
}
