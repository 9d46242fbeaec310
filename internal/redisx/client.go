package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Cache drops cached read views after committed mutations. It never reads
// through; failures are logged and swallowed.
type Cache struct {
	Client *redis.Client
	Log    *zap.Logger
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.Client == nil || len(keys) == 0 {
		return
	}
	if err := c.Client.Del(ctx, keys...).Err(); err != nil {
		c.Log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
