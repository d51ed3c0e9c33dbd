package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"taskapp/internal/core/domain"
	"taskapp/internal/core/model/request"
	"taskapp/internal/core/model/response"
	"taskapp/internal/core/port"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// TaskService orchestrates the repository. It holds no state of its own;
// everything durable lives behind the port.
type TaskService struct {
	repo port.TaskRepository
}

func NewTaskService(repo port.TaskRepository) *TaskService {
	return &TaskService{repo}
}

func (ts *TaskService) CreateTask(ctx context.Context, req request.CreateTaskRequest) (domain.Task, error) {
	task, err := ts.repo.Create(ctx, req)

	if err != nil {
		slog.Error("Repository create failed", "error", err)
		return domain.Task{}, err
	}

	return task, nil
}

// ListTasks issues the page query and the count query as two independent
// reads. Under concurrent writes total may disagree with the returned
// page; acceptable for a best-effort listing.
func (ts *TaskService) ListTasks(ctx context.Context, filters domain.TaskFilters) (*response.PaginatedTasks, error) {
	if filters.Page <= 0 {
		filters.Page = defaultPage
	}

	if filters.Limit <= 0 {
		filters.Limit = defaultLimit
	}

	tasks, err := ts.repo.FindAll(ctx, filters)

	if err != nil {
		slog.Error("Error fetching tasks", "error", err)
		return nil, err
	}

	total, err := ts.repo.Count(ctx, filters)

	if err != nil {
		slog.Error("Error counting tasks", "error", err)
		return nil, err
	}

	data := make([]response.TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		data = append(data, response.NewTaskResponse(task))
	}

	totalPages := int((total + int64(filters.Limit) - 1) / int64(filters.Limit))

	return &response.PaginatedTasks{
		Data: data,
		Pagination: response.Pagination{
			Page:       filters.Page,
			Limit:      filters.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetTaskByID is also the shared existence check: every mutating
// operation goes through it first so a missing id is always reported as
// the same NotFound, never as a storage-level failure.
func (ts *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	task, err := ts.repo.FindByID(ctx, id)

	if err != nil {
		slog.Error("Error getting task by id", "error", err, "id", id)
		return domain.Task{}, err
	}

	if task == nil {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	return *task, nil
}

func (ts *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, req request.UpdateTaskRequest) (domain.Task, error) {
	if _, err := ts.GetTaskByID(ctx, id); err != nil {
		return domain.Task{}, err
	}

	return ts.repo.Update(ctx, id, req)
}

func (ts *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, err := ts.GetTaskByID(ctx, id); err != nil {
		return err
	}

	return ts.repo.Delete(ctx, id)
}

// ToggleTaskComplete reads the current completed_at and hands it to the
// repository, which writes its negation. The read and the write are two
// separate steps; two concurrent toggles on the same task can collapse
// into one.
func (ts *TaskService) ToggleTaskComplete(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	task, err := ts.GetTaskByID(ctx, id)

	if err != nil {
		return domain.Task{}, err
	}

	return ts.repo.ToggleComplete(ctx, id, task.CompletedAt)
}
