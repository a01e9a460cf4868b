package models

import (
	"strings"
	"time"
)

// User represents an administrator account
type User struct {
	ID           uint       `json:"id" db:"id" gorm:"primaryKey"`
	Username     string     `json:"username" db:"username" gorm:"size:64;uniqueIndex;not null"`
	Email        string     `json:"email" db:"email" gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string     `json:"-" db:"password_hash" gorm:"size:256;not null"`
	FirstName    string     `json:"first_name" db:"first_name" gorm:"size:64"`
	LastName     string     `json:"last_name" db:"last_name" gorm:"size:64"`
	IsActive     bool       `json:"is_active" db:"is_active" gorm:"default:true;not null"`
	IsAdmin      bool       `json:"is_admin" db:"is_admin" gorm:"default:false;not null"`
	LastLogin    *time.Time `json:"last_login" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsValid reports whether the user has been persisted
func (u *User) IsValid() bool {
	return u.ID != 0
}

// FullName returns the user's full name, falling back to the username
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// Validate returns every violated constraint as a human-readable message
func (u *User) Validate() []string {
	var errs []string

	if strings.TrimSpace(u.Username) == "" {
		errs = append(errs, "Username is required")
	}
	if len(u.Username) > 64 {
		errs = append(errs, "Username is too long (max 64 characters)")
	}
	if strings.TrimSpace(u.Email) == "" {
		errs = append(errs, "Email is required")
	} else if !strings.Contains(u.Email, "@") {
		errs = append(errs, "Email format is invalid")
	}
	if len(u.Email) > 120 {
		errs = append(errs, "Email is too long (max 120 characters)")
	}
	if u.PasswordHash == "" {
		errs = append(errs, "Password hash is required")
	}

	return errs
}
