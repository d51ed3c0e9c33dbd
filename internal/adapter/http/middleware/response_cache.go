package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"taskapp/internal/adapter/telemetry"
	"taskapp/internal/core/port"
	"taskapp/pkg/config"
	"taskapp/pkg/tracing"
)

// ResponseCache serves recent GET responses from a CacheRepository,
// trading a short staleness window for fewer storage reads.
type ResponseCache struct {
	repo    port.CacheRepository
	configs map[string]config.ResponseCacheConfig
	metrics *telemetry.AppMetrics
}

type cachedResponse struct {
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewResponseCache(repo port.CacheRepository, configs map[string]config.ResponseCacheConfig, metrics *telemetry.AppMetrics) *ResponseCache {
	return &ResponseCache{
		repo:    repo,
		configs: configs,
		metrics: metrics,
	}
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Next()

			if c.Writer.Status() < 400 {
				rc.invalidate(c)
			}

			return
		}

		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		cfg, exists := rc.configs[path]

		if !exists || !cfg.Enabled {
			c.Next()
			return
		}

		key := rc.cacheKey(c, path)

		if cached, ok := rc.lookup(c, key, cfg.TTL); ok {
			if rc.metrics != nil {
				rc.metrics.RecordCacheHit(path)
			}

			span := trace.SpanFromContext(c.Request.Context())
			tracing.AddSpanEvent(span, "cache.response.hit", []attribute.KeyValue{
				attribute.String("cache.key", key),
				attribute.String("cache.path", path),
			})

			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(path)
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		c.Next()

		if recorder.Status() == 200 {
			rc.save(c, key, cachedResponse{
				StatusCode:  recorder.Status(),
				ContentType: recorder.Header().Get("Content-Type"),
				Body:        recorder.body.Bytes(),
				Timestamp:   time.Now(),
			}, cfg.TTL)
		}
	}
}

func (rc *ResponseCache) cacheKey(c *gin.Context, path string) string {
	return keyFor(path, c.Request.URL.RawQuery)
}

func keyFor(path, rawQuery string) string {
	raw := path + "?" + rawQuery
	return fmt.Sprintf("response:%x", md5.Sum([]byte(raw)))
}

// invalidate drops the unfiltered entry of every cached route after a
// successful mutation. Filtered variants are keyed by their query string
// and cannot be enumerated; those age out with the TTL.
func (rc *ResponseCache) invalidate(c *gin.Context) {
	for path, cfg := range rc.configs {
		if !cfg.Enabled {
			continue
		}

		_ = rc.repo.Delete(c.Request.Context(), keyFor(path, ""))
	}
}

func (rc *ResponseCache) lookup(c *gin.Context, key string, ttl time.Duration) (*cachedResponse, bool) {
	data, err := rc.repo.Get(c.Request.Context(), key)

	if err != nil || data == nil {
		return nil, false
	}

	var cached cachedResponse

	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	if time.Since(cached.Timestamp) >= ttl {
		return nil, false
	}

	return &cached, true
}

func (rc *ResponseCache) save(c *gin.Context, key string, resp cachedResponse, ttl time.Duration) {
	data, err := json.Marshal(resp)

	if err != nil {
		return
	}

	_ = rc.repo.Set(c.Request.Context(), key, data, ttl)
}
