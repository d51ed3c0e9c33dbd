package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"taskapp/internal/adapter/telemetry"
	"taskapp/pkg/config"
	"taskapp/pkg/tracing"
)

// Setup installs the full chain: tracing, logging, metrics, rate
// limiting and response caching, in that order.
func Setup(router *gin.Engine, serviceName string, metrics *telemetry.AppMetrics, logger *config.AppLogger, cfg *config.AppConfig, cache *ResponseCache) {
	router.Use(otelgin.Middleware(serviceName))

	if logger != nil {
		router.Use(LoggingMiddleware(logger))
	}

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}

	if cfg.EnforceHTTPS {
		router.Use(HTTPSEnforcer())
	}

	if cfg.RateLimitEnabled {
		limiter := NewRateLimiter(cfg.RateLimitConfigs, metrics)
		router.Use(limiter.Middleware())
	}

	if cfg.CacheEnabled && cache != nil {
		router.Use(cache.Middleware())
	}
}

func LoggingMiddleware(logger *config.AppLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info(c.Request.Context(), "HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("trace_id", tracing.GetTraceID(c.Request.Context())),
		)
	}
}

func MetricsMiddleware(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections()
		defer metrics.DecrementActiveConnections()

		c.Next()

		metrics.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// HTTPSEnforcer redirects plain-HTTP requests when the deployment sits
// behind a TLS-terminating proxy.
func HTTPSEnforcer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Forwarded-Proto") == "http" {
			target := "https://" + c.Request.Host + c.Request.URL.RequestURI()
			c.Redirect(http.StatusMovedPermanently, target)
			c.Abort()
			return
		}

		c.Next()
	}
}
