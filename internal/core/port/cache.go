package port

import (
	"context"
	"time"
)

// CacheRepository backs the response cache middleware. The memory adapter
// is the default; the redis adapter is used when REDIS_URL is set.
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
