// File: utils/cache.go
package utils

import (
	"context"
	"time"

	"concierge/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient backs the booking idempotency guard.
var CacheClient *redis.Client

// InitCache connects the Redis cache client. The guard is best-effort, so
// a missing Redis is reported to the caller instead of killing the process.
func InitCache() (*redis.Client, error) {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		CacheClient = nil
		return nil, err
	}
	return CacheClient, nil
}

// GetCacheClient returns the cache client, nil when Redis is unavailable.
func GetCacheClient() *redis.Client {
	return CacheClient
}
