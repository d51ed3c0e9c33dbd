package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"taskapp/internal/adapter/database/postgres"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/model/request"
	"taskapp/internal/core/port"
	"taskapp/pkg/tracing"
)

const taskColumns = "id, title, description, completed_at, created_at, updated_at"

type TaskRepository struct {
	db *postgres.DB
}

func NewTaskRepository(db *postgres.DB) port.TaskRepository {
	return &TaskRepository{db: db}
}

func applyFilters(query sq.SelectBuilder, filters domain.TaskFilters) sq.SelectBuilder {
	if filters.Search != nil && *filters.Search != "" {
		pattern := "%" + *filters.Search + "%"

		query = query.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}

	if filters.Completed != nil {
		if *filters.Completed {
			query = query.Where(sq.NotEq{"completed_at": nil})
		} else {
			query = query.Where(sq.Eq{"completed_at": nil})
		}
	}

	return query
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var task domain.Task

	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.CompletedAt, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return domain.Task{}, err
	}

	return task, nil
}

func (tr *TaskRepository) Create(ctx context.Context, req request.CreateTaskRequest) (domain.Task, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.task.Create", []attribute.KeyValue{
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "INSERT"),
	})

	defer span.End()

	now := time.Now().UTC()

	query, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("id", "title", "description", "completed_at", "created_at", "updated_at").
		Values(uuid.New(), *req.Title, *req.Description, nil, now, now).
		Suffix("RETURNING " + taskColumns).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	task, err := scanTask(tr.db.QueryRow(ctx, query, args...))

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Error creating task", "error", err)
		return domain.Task{}, err
	}

	return task, nil
}

func (tr *TaskRepository) FindAll(ctx context.Context, filters domain.TaskFilters) ([]domain.Task, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.task.FindAll", []attribute.KeyValue{
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "SELECT"),
		attribute.Int("task.page", filters.Page),
		attribute.Int("task.limit", filters.Limit),
	})

	defer span.End()

	query := applyFilters(tr.db.QueryBuilder.Select(taskColumns).From("tasks"), filters).
		OrderBy("created_at DESC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset()))

	stmt, args, err := query.ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return nil, err
	}

	rows, err := tr.db.Query(ctx, stmt, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Error fetching tasks", "error", err)
		return nil, err
	}

	defer rows.Close()

	tasks := []domain.Task{}

	for rows.Next() {
		task, err := scanTask(rows)

		if err != nil {
			tracing.AddSpanError(span, err)
			return nil, err
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		tracing.AddSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(tasks)))

	return tasks, nil
}

func (tr *TaskRepository) Count(ctx context.Context, filters domain.TaskFilters) (int64, error) {
	stmt, args, err := applyFilters(tr.db.QueryBuilder.Select("COUNT(*)").From("tasks"), filters).ToSql()

	if err != nil {
		return 0, err
	}

	var total int64

	if err := tr.db.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		slog.Error("Error counting tasks", "error", err)
		return 0, err
	}

	return total, nil
}

func (tr *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	stmt, args, err := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, err
	}

	task, err := scanTask(tr.db.QueryRow(ctx, stmt, args...))

	if err == pgx.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		slog.Error("Error getting task by id", "error", err, "id", id)
		return nil, err
	}

	return &task, nil
}

func (tr *TaskRepository) Update(ctx context.Context, id uuid.UUID, req request.UpdateTaskRequest) (domain.Task, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.task.Update", []attribute.KeyValue{
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("task.id", id.String()),
	})

	defer span.End()

	changes := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}

	if req.Title != nil {
		changes["title"] = *req.Title
	}

	if req.Description != nil {
		changes["description"] = *req.Description
	}

	stmt, args, err := tr.db.QueryBuilder.Update("tasks").
		SetMap(changes).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + taskColumns).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	task, err := scanTask(tr.db.QueryRow(ctx, stmt, args...))

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Error updating task", "error", err, "id", id)
		return domain.Task{}, err
	}

	return task, nil
}

func (tr *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	stmt, args, err := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := tr.db.Exec(ctx, stmt, args...)

	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("task with id %s not found", id)
	}

	return nil
}

func (tr *TaskRepository) ToggleComplete(ctx context.Context, id uuid.UUID, currentCompletedAt *time.Time) (domain.Task, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.task.ToggleComplete", []attribute.KeyValue{
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("task.id", id.String()),
		attribute.Bool("task.was_completed", currentCompletedAt != nil),
	})

	defer span.End()

	now := time.Now().UTC()

	var completedAt interface{}

	if currentCompletedAt == nil {
		completedAt = now
	}

	stmt, args, err := tr.db.QueryBuilder.Update("tasks").
		Set("completed_at", completedAt).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + taskColumns).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	task, err := scanTask(tr.db.QueryRow(ctx, stmt, args...))

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Error toggling task", "error", err, "id", id)
		return domain.Task{}, err
	}

	return task, nil
}
