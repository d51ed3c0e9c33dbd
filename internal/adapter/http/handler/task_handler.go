package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"taskapp/internal/adapter/http/helper"
	"taskapp/internal/adapter/http/validation"
	"taskapp/internal/adapter/telemetry"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/model/request"
	"taskapp/internal/core/model/response"
	"taskapp/internal/core/port"
	"taskapp/pkg/config"
	"taskapp/pkg/tracing"
)

type TaskHandler struct {
	svc     port.TaskService
	logger  *config.AppLogger
	metrics *telemetry.AppMetrics
}

func NewTaskHandler(svc port.TaskService, logger *config.AppLogger, metrics *telemetry.AppMetrics) *TaskHandler {
	return &TaskHandler{
		svc:     svc,
		logger:  logger,
		metrics: metrics,
	}
}

func (t *TaskHandler) CreateTask(c *gin.Context) {
	ctx, span := tracing.CreateChildSpan(c.Request.Context(), "handler.task.CreateTask", []attribute.KeyValue{
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	defer span.End()

	var params request.CreateTaskRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		sendBindingError(c, err)
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationError(c, validation.FormatValidationErrors(err))
		return
	}

	task, err := t.svc.CreateTask(ctx, params)

	if err != nil {
		tracing.AddSpanError(span, err)
		t.logError(c, "Failed to create task", err)
		helper.SendInternalError(c)
		return
	}

	t.recordOperation("create")

	c.JSON(http.StatusCreated, response.NewTaskResponse(task))
}

func (t *TaskHandler) ListTasks(c *gin.Context) {
	ctx, span := tracing.CreateChildSpan(c.Request.Context(), "handler.task.ListTasks", []attribute.KeyValue{
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	defer span.End()

	var query request.TaskQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		helper.SendBadRequestError(c, "query", "Invalid query parameters")
		return
	}

	if err := validation.Validator.Struct(query); err != nil {
		helper.SendValidationError(c, validation.FormatValidationErrors(err))
		return
	}

	filters := domain.TaskFilters{
		Search:    query.Search,
		Completed: query.Completed,
	}

	if query.Page != nil {
		filters.Page = *query.Page
	}

	if query.Limit != nil {
		filters.Limit = *query.Limit
	}

	data, err := t.svc.ListTasks(ctx, filters)

	if err != nil {
		tracing.AddSpanError(span, err)
		t.logError(c, "Failed to list tasks", err)
		helper.SendInternalError(c)
		return
	}

	span.SetAttributes(attribute.Int("task.count", len(data.Data)))

	c.JSON(http.StatusOK, data)
}

func (t *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseTaskID(c)

	if !ok {
		return
	}

	task, err := t.svc.GetTaskByID(c.Request.Context(), id)

	if err != nil {
		t.sendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewTaskResponse(task))
}

func (t *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseTaskID(c)

	if !ok {
		return
	}

	var params request.UpdateTaskRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		sendBindingError(c, err)
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationError(c, validation.FormatValidationErrors(err))
		return
	}

	task, err := t.svc.UpdateTask(c.Request.Context(), id, params)

	if err != nil {
		t.sendServiceError(c, err)
		return
	}

	t.recordOperation("update")

	c.JSON(http.StatusOK, response.NewTaskResponse(task))
}

func (t *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseTaskID(c)

	if !ok {
		return
	}

	if err := t.svc.DeleteTask(c.Request.Context(), id); err != nil {
		t.sendServiceError(c, err)
		return
	}

	t.recordOperation("delete")

	c.Status(http.StatusNoContent)
}

func (t *TaskHandler) ToggleComplete(c *gin.Context) {
	id, ok := parseTaskID(c)

	if !ok {
		return
	}

	task, err := t.svc.ToggleTaskComplete(c.Request.Context(), id)

	if err != nil {
		t.sendServiceError(c, err)
		return
	}

	t.recordOperation("toggle")

	c.JSON(http.StatusOK, response.NewTaskResponse(task))
}

func parseTaskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))

	if err != nil {
		helper.SendBadRequestError(c, "id", "Invalid task ID format")
		return uuid.Nil, false
	}

	return id, true
}

// sendServiceError maps a business failure onto the wire: NotFound keeps
// its message, anything else is reported generically.
func (t *TaskHandler) sendServiceError(c *gin.Context, err error) {
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		helper.SendNotFoundError(c, domain.ErrTaskNotFound.Message)
		return
	}

	t.logError(c, "Unhandled task error", err)
	helper.SendInternalError(c)
}

func sendBindingError(c *gin.Context, err error) {
	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &typeErr) && typeErr.Field != "" {
		helper.SendBadRequestError(c, typeErr.Field, typeErr.Field+" must be a "+typeErr.Type.String())
		return
	}

	helper.SendBadRequestError(c, "body", "Invalid request body")
}

func (t *TaskHandler) logError(c *gin.Context, msg string, err error) {
	if t.logger == nil {
		return
	}

	t.logger.Error(c.Request.Context(), msg,
		zap.Error(err),
		zap.String("path", c.FullPath()),
	)
}

func (t *TaskHandler) recordOperation(operation string) {
	if t.metrics != nil {
		t.metrics.RecordTaskOperation(operation)
	}
}
