// Package validation holds the pure field checks shared by the store and
// the HTTP handlers. Every function evaluates only its arguments.
package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	TaskStatuses    = []string{"pending", "in_progress", "done", "cancelled"}
	Priorities      = []string{"low", "medium", "high", "critical"}
	ProjectStatuses = []string{"active", "paused", "completed", "cancelled"}
	CommentTypes    = []string{"comment", "note", "log", "change"}
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Task validates the three task fields the CRUD surface accepts and
// returns the list of violations, empty when valid.
func Task(title, priority, status string) []string {
	var violations []string

	// Limits count characters, not bytes: accented titles must not hit
	// the bounds early.
	if utf8.RuneCountInString(strings.TrimSpace(title)) < 3 {
		violations = append(violations, "title must have at least 3 characters")
	}
	if utf8.RuneCountInString(title) > 100 {
		violations = append(violations, "title must have at most 100 characters")
	}
	if !slices.Contains(Priorities, priority) {
		violations = append(violations, fmt.Sprintf("priority must be one of: %s", strings.Join(Priorities, ", ")))
	}
	if !slices.Contains(TaskStatuses, status) {
		violations = append(violations, fmt.Sprintf("status must be one of: %s", strings.Join(TaskStatuses, ", ")))
	}

	return violations
}

// Project validates project status, priority and progress.
func Project(status, priority string, progress int) []string {
	var violations []string

	if !slices.Contains(ProjectStatuses, status) {
		violations = append(violations, fmt.Sprintf("status must be one of: %s", strings.Join(ProjectStatuses, ", ")))
	}
	if !slices.Contains(Priorities, priority) {
		violations = append(violations, fmt.Sprintf("priority must be one of: %s", strings.Join(Priorities, ", ")))
	}
	if progress < 0 || progress > 100 {
		violations = append(violations, "progress must be between 0 and 100")
	}

	return violations
}

// Email reports whether the address looks like local@domain.tld with a
// TLD of at least two letters.
func Email(email string) bool {
	return emailPattern.MatchString(email)
}

// CommentType reports membership in the comment type enumeration.
func CommentType(t string) bool {
	return slices.Contains(CommentTypes, t)
}

// Progress reports whether p is a valid percentage.
func Progress(p int) bool {
	return p >= 0 && p <= 100
}
