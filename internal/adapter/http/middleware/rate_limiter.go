package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"taskapp/internal/adapter/http/helper"
	"taskapp/internal/adapter/telemetry"
	"taskapp/pkg"
	"taskapp/pkg/config"
)

// RateLimiter keeps fixed-window per-IP counters in go-cache. Windows
// are keyed by route so each path gets its own budget. The mutex covers
// the read-modify-write on an entry; go-cache only guards the map.
type RateLimiter struct {
	store   *cache.Cache
	configs map[string]config.RateLimitConfig
	metrics *telemetry.AppMetrics
	mutex   sync.Mutex
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

func NewRateLimiter(configs map[string]config.RateLimitConfig, metrics *telemetry.AppMetrics) *RateLimiter {
	return &RateLimiter{
		store:   cache.New(5*time.Minute, 10*time.Minute),
		configs: configs,
		metrics: metrics,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		limit, exists := rl.configs[path]

		if !exists {
			limit, exists = rl.configs["default"]
		}

		if !exists {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s|%s", path, pkg.GetClientIP(c))

		if !rl.allow(key, limit) {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(path)
			}

			helper.SendTooManyRequests(c)
			c.Abort()
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(path)
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(key string, limit config.RateLimitConfig) bool {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	value, found := rl.store.Get(key)

	if !found {
		rl.store.Set(key, rateLimitEntry{Count: 1, ResetTime: now.Add(limit.Window)}, limit.Window)
		return true
	}

	entry := value.(rateLimitEntry)

	if now.After(entry.ResetTime) {
		rl.store.Set(key, rateLimitEntry{Count: 1, ResetTime: now.Add(limit.Window)}, limit.Window)
		return true
	}

	if entry.Count >= limit.Requests {
		return false
	}

	entry.Count++
	rl.store.Set(key, entry, time.Until(entry.ResetTime))

	return true
}
