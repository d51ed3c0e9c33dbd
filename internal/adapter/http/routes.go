package http

import (
	"github.com/gin-gonic/gin"

	"taskapp/internal/adapter/http/handler"
	"taskapp/internal/adapter/http/middleware"
	"taskapp/internal/adapter/telemetry"
	"taskapp/pkg/config"
)

func SetupRouter(taskHandler *handler.TaskHandler, metrics *telemetry.AppMetrics, logger *config.AppLogger) *gin.Engine {
	return SetupRouterWithConfig(taskHandler, metrics, logger, config.GetDefaultConfig(), nil)
}

func SetupRouterWithConfig(taskHandler *handler.TaskHandler, metrics *telemetry.AppMetrics, logger *config.AppLogger, cfg *config.AppConfig, cache *middleware.ResponseCache) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	middleware.Setup(router, "taskapp", metrics, logger, cfg, cache)

	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.CORSOrigin))

	registerTaskRoutes(router, taskHandler)

	return router
}

func registerTaskRoutes(router *gin.Engine, taskHandler *handler.TaskHandler) {
	tasks := router.Group("/tasks")
	{
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("", taskHandler.ListTasks)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.PATCH("/:id/complete", taskHandler.ToggleComplete)
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SetupRouterForTests builds a bare router without the middleware chain.
func SetupRouterForTests(taskHandler *handler.TaskHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(gin.Recovery())

	registerTaskRoutes(router, taskHandler)

	return router
}
