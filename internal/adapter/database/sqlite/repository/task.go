package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"taskapp/internal/adapter/database/sqlite"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/model/request"
	"taskapp/internal/core/port"
	"taskapp/pkg/tracing"
)

const taskColumns = "id, title, description, completed_at, created_at, updated_at"

type TaskRepository struct {
	db *sqlite.DB
}

func NewTaskRepository(db *sqlite.DB) port.TaskRepository {
	return &TaskRepository{db: db}
}

// applyFilters adds the search and completed predicates shared by
// FindAll and Count. Pagination is deliberately not applied here.
func applyFilters(query sq.SelectBuilder, filters domain.TaskFilters) sq.SelectBuilder {
	if filters.Search != nil && *filters.Search != "" {
		pattern := "%" + strings.ToLower(*filters.Search) + "%"

		query = query.Where(sq.Or{
			sq.Like{"LOWER(title)": pattern},
			sq.Like{"LOWER(description)": pattern},
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

func scanTask(row interface{ Scan(dest ...any) error }) (domain.Task, error) {
	var task domain.Task
	var completedAt sql.NullTime

	err := row.Scan(&task.ID, &task.Title, &task.Description, &completedAt, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return domain.Task{}, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}

	return task, nil
}

func (tr *TaskRepository) Create(ctx context.Context, req request.CreateTaskRequest) (domain.Task, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.task.Create", []attribute.KeyValue{
		attribute.String("db.table", "tasks"),
		attribute.String("db.operation", "INSERT"),
	})

	defer span.End()

	id := uuid.New()
	now := time.Now().UTC()

	query, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("id", "title", "description", "completed_at", "created_at", "updated_at").
		Values(id.String(), *req.Title, *req.Description, nil, now, now).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	if _, err := tr.db.ExecContext(ctx, query, args...); err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Insert failed", "error", err, "id", id)
		return domain.Task{}, err
	}

	saved, err := tr.FindByID(ctx, id)

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	if saved == nil {
		err := fmt.Errorf("task %s missing after insert", id)
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	return *saved, nil
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

	rows, err := tr.db.QueryContext(ctx, stmt, args...)

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
	query := applyFilters(tr.db.QueryBuilder.Select("COUNT(*)").From("tasks"), filters)

	stmt, args, err := query.ToSql()

	if err != nil {
		return 0, err
	}

	var total int64

	if err := tr.db.QueryRowContext(ctx, stmt, args...).Scan(&total); err != nil {
		slog.Error("Error counting tasks", "error", err)
		return 0, err
	}

	return total, nil
}

func (tr *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"id": id.String()}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return nil, err
	}

	task, err := scanTask(tr.db.QueryRowContext(ctx, stmt, args...))

	if err == sql.ErrNoRows {
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

	query, args, err := tr.db.QueryBuilder.Update("tasks").
		SetMap(changes).
		Where(sq.Eq{"id": id.String()}).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Error updating task", "error", err, "id", id)
		return domain.Task{}, err
	}

	rowsAffected, _ := result.RowsAffected()

	if rowsAffected == 0 {
		err := fmt.Errorf("no task updated with id %s", id)
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	updated, err := tr.FindByID(ctx, id)

	if err != nil || updated == nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, fmt.Errorf("task %s missing after update", id)
	}

	return *updated, nil
}

func (tr *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"id": id.String()}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return err
	}

	rowsAffected, _ := result.RowsAffected()

	if rowsAffected == 0 {
		return fmt.Errorf("task with id %s not found", id)
	}

	return nil
}

// ToggleComplete writes the negation of the completed_at value the caller
// read. The read happened in the service; nothing here re-checks the
// current value, so concurrent toggles can overwrite each other.
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

	query, args, err := tr.db.QueryBuilder.Update("tasks").
		Set("completed_at", completedAt).
		Set("updated_at", now).
		Where(sq.Eq{"id": id.String()}).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	if _, err := tr.db.ExecContext(ctx, query, args...); err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Error toggling task", "error", err, "id", id)
		return domain.Task{}, err
	}

	updated, err := tr.FindByID(ctx, id)

	if err != nil || updated == nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, fmt.Errorf("task %s missing after toggle", id)
	}

	return *updated, nil
}
