package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"taskapp/internal/adapter/http/middleware"
	"taskapp/internal/core/model/response"
	"taskapp/pkg/config"
)

func rateLimitedRouter(configs map[string]config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.NewRateLimiter(configs, nil).Middleware())
	router.GET("/tasks", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router
}

func get(router *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Forwarded-For", ip)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	return recorder
}

func TestRateLimiter_BlocksOverTheLimit(t *testing.T) {
	router := rateLimitedRouter(map[string]config.RateLimitConfig{
		"/tasks": {Requests: 3, Window: time.Minute},
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(router, "/tasks", "10.0.0.1").Code)
	}

	recorder := get(router, "/tasks", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)

	var errResp response.ErrorResponse
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &errResp))
	assert.Equal(t, "error", errResp.Status)
	assert.Equal(t, "Too many requests from this IP, please try again later.", errResp.Message)
}

func TestRateLimiter_CountsPerClientIP(t *testing.T) {
	router := rateLimitedRouter(map[string]config.RateLimitConfig{
		"/tasks": {Requests: 1, Window: time.Minute},
	})

	assert.Equal(t, http.StatusOK, get(router, "/tasks", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/tasks", "10.0.0.1").Code)

	// a different client still has budget
	assert.Equal(t, http.StatusOK, get(router, "/tasks", "10.0.0.2").Code)
}

func TestRateLimiter_FallsBackToDefaultConfig(t *testing.T) {
	router := rateLimitedRouter(map[string]config.RateLimitConfig{
		"default": {Requests: 1, Window: time.Minute},
	})

	assert.Equal(t, http.StatusOK, get(router, "/tasks", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/tasks", "10.0.0.1").Code)
}

func TestRateLimiter_NoConfigMeansNoLimit(t *testing.T) {
	router := rateLimitedRouter(map[string]config.RateLimitConfig{})

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, get(router, "/tasks", "10.0.0.1").Code)
	}
}

func TestRateLimiter_ConcurrentRequestsNeverExceedTheLimit(t *testing.T) {
	const (
		limit      = 50
		goroutines = 16
		perWorker  = 100
	)

	router := rateLimitedRouter(map[string]config.RateLimitConfig{
		"/tasks": {Requests: limit, Window: time.Minute},
	})

	var wg sync.WaitGroup
	var allowed int64

	for i := 0; i < goroutines; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < perWorker; j++ {
				if get(router, "/tasks", "10.0.0.1").Code == http.StatusOK {
					atomic.AddInt64(&allowed, 1)
				}
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(limit), allowed)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	router := rateLimitedRouter(map[string]config.RateLimitConfig{
		"/tasks": {Requests: 1, Window: 20 * time.Millisecond},
	})

	assert.Equal(t, http.StatusOK, get(router, "/tasks", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/tasks", "10.0.0.1").Code)

	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, http.StatusOK, get(router, "/tasks", "10.0.0.1").Code)
}
