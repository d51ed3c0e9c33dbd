package request

// CreateTaskRequest is the create payload. Pointer fields distinguish a
// missing key ("Title is required") from an empty one ("Title cannot be
// empty"), matching the two distinct validation messages.
type CreateTaskRequest struct {
	Title       *string `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"required,min=1,max=1000"`
}

// UpdateTaskRequest is the partial-update payload. A struct-level rule
// rejects it when both fields are absent.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1,max=1000"`
}

// TaskQuery carries the raw listing filters from the query string.
// Out-of-range values fail validation instead of being clamped.
type TaskQuery struct {
	Search    *string `form:"search"`
	Completed *bool   `form:"completed"`
	Page      *int    `form:"page" validate:"omitempty,gte=1"`
	Limit     *int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
}
