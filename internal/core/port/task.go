package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskapp/internal/core/domain"
	"taskapp/internal/core/model/request"
	"taskapp/internal/core/model/response"
)

// TaskRepository is the contract toward the storage collaborator. Each
// operation is individually atomic; calls are never composed into a
// transaction by the service.
type TaskRepository interface {
	// Create persists a new task. The storage adapter assigns the id and
	// both timestamps.
	Create(ctx context.Context, req request.CreateTaskRequest) (domain.Task, error)
	// FindAll returns the filtered page ordered by created_at descending.
	FindAll(ctx context.Context, filters domain.TaskFilters) ([]domain.Task, error)
	// Count returns the filtered total, ignoring pagination.
	Count(ctx context.Context, filters domain.TaskFilters) (int64, error)
	// FindByID returns (nil, nil) when no task has the given id.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	// Update applies only the fields present in req, refreshing updated_at.
	Update(ctx context.Context, id uuid.UUID, req request.UpdateTaskRequest) (domain.Task, error)
	// Delete removes the row. Hard delete, no tombstone.
	Delete(ctx context.Context, id uuid.UUID) error
	// ToggleComplete flips completed_at based on the value the caller read:
	// non-nil becomes null, null becomes the current time.
	ToggleComplete(ctx context.Context, id uuid.UUID, currentCompletedAt *time.Time) (domain.Task, error)
}

// TaskService is the boundary the HTTP layer depends on.
type TaskService interface {
	CreateTask(ctx context.Context, req request.CreateTaskRequest) (domain.Task, error)
	ListTasks(ctx context.Context, filters domain.TaskFilters) (*response.PaginatedTasks, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (domain.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, req request.UpdateTaskRequest) (domain.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	ToggleTaskComplete(ctx context.Context, id uuid.UUID) (domain.Task, error)
}
