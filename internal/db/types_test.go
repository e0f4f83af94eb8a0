package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTaskIsOverdue(t *testing.T) {
	today := date(2025, time.June, 15)

	tests := []struct {
		name    string
		due     *time.Time
		status  string
		overdue bool
	}{
		{"no due date", nil, TASK_PENDING, false},
		{"due yesterday, pending", ptr(date(2025, time.June, 14)), TASK_PENDING, true},
		{"due yesterday, in progress", ptr(date(2025, time.June, 14)), TASK_IN_PROGRESS, true},
		{"due yesterday, done", ptr(date(2025, time.June, 14)), TASK_DONE, false},
		{"due yesterday, cancelled", ptr(date(2025, time.June, 14)), TASK_CANCELLED, false},
		{"due today is not overdue", ptr(date(2025, time.June, 15)), TASK_PENDING, false},
		{"due tomorrow", ptr(date(2025, time.June, 16)), TASK_PENDING, false},
		{"due earlier today with time component", ptr(time.Date(2025, time.June, 15, 8, 30, 0, 0, time.UTC)), TASK_PENDING, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{DueDate: tt.due, Status: tt.status}
			assert.Equal(t, tt.overdue, task.IsOverdue(today))
		})
	}
}

func TestTaskDaysUntilDue(t *testing.T) {
	today := date(2025, time.June, 15)

	t.Run("no due date", func(t *testing.T) {
		task := &Task{}
		_, ok := task.DaysUntilDue(today)
		assert.False(t, ok)
	})

	t.Run("future due date", func(t *testing.T) {
		task := &Task{DueDate: ptr(date(2025, time.June, 20))}
		days, ok := task.DaysUntilDue(today)
		assert.True(t, ok)
		assert.Equal(t, 5, days)
	})

	t.Run("past due date is negative", func(t *testing.T) {
		task := &Task{DueDate: ptr(date(2025, time.June, 10))}
		days, ok := task.DaysUntilDue(today)
		assert.True(t, ok)
		assert.Equal(t, -5, days)
	})

	t.Run("due today is zero", func(t *testing.T) {
		task := &Task{DueDate: ptr(date(2025, time.June, 15))}
		days, ok := task.DaysUntilDue(today)
		assert.True(t, ok)
		assert.Zero(t, days)
	})
}

func ptr(t time.Time) *time.Time {
	return &t
}
