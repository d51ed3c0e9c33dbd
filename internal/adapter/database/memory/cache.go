package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"taskapp/internal/core/port"
)

type cacheRepository struct {
	store *cache.Cache
}

// NewCacheRepository returns an in-process cache backed by go-cache.
func NewCacheRepository() port.CacheRepository {
	return &cacheRepository{
		store: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (c *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.store.Set(key, value, ttl)
	return nil
}

func (c *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := c.store.Get(key)

	if !found {
		return nil, nil
	}

	return value.([]byte), nil
}

func (c *cacheRepository) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *cacheRepository) Close() error {
	return nil
}
