package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is the sole entity of the service. completed_at doubles as the
// completion flag: nil means incomplete, non-nil holds the instant the
// task was completed.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.CompletedAt != nil
}

// TaskFilters carries the listing filters. Page and Limit are zero when
// the caller omitted them; the service applies the defaults.
type TaskFilters struct {
	Search    *string
	Completed *bool
	Page      int
	Limit     int
}

func (f TaskFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}
