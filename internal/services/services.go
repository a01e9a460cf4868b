// Package services implements the mutation, relationship and graph-query
// layer on top of the models package. Every mutating method runs inside a
// transaction, rolls back on failure and returns an error instead of
// panicking; lookup misses return nil or empty collections.
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ValidationError carries every violated rule for an entity so callers can
// surface all of them at once.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// NewValidationError wraps a non-empty violation list; it returns nil when
// there is nothing to report.
func NewValidationError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// Violations extracts the violation list from a validation error, or nil
// for any other error.
func Violations(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violations
	}
	return nil
}

// isDuplicate reports whether err is a unique-constraint violation. With
// TranslateError enabled the driver error arrives as gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// isNotFound reports whether err is a record-not-found miss
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
