package db

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDefaultsMissing is returned when the bootstrap user or category
	// is absent, meaning the system was never initialized.
	ErrDefaultsMissing = errors.New("system defaults not configured")

	// ErrCategoryInUse is returned when deleting a category that tasks
	// still reference.
	ErrCategoryInUse = errors.New("category is referenced by tasks")
)

// ValidationError carries the human-readable violations for a rejected
// write. The store never persists anything when returning one.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

func validationError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}
