package http

import (
	"taskapp/internal/adapter/http/handler"
	"taskapp/internal/adapter/telemetry"
	"taskapp/internal/core/port"
	"taskapp/internal/core/service"
	"taskapp/pkg/config"
)

type Container struct {
	TaskRepo    port.TaskRepository
	TaskService port.TaskService
	TaskHandler *handler.TaskHandler
}

func NewContainer(repo port.TaskRepository, logger *config.AppLogger, metrics *telemetry.AppMetrics) *Container {
	svc := service.NewTaskService(repo)

	return &Container{
		TaskRepo:    repo,
		TaskService: svc,
		TaskHandler: handler.NewTaskHandler(svc, logger, metrics),
	}
}
