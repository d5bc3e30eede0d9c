// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"leadline/config"

	"github.com/go-redis/redis/v8"
)

// TokenCacheClient holds OAuth tokens when GOOGLE_TOKEN_STORE is "redis".
var TokenCacheClient *redis.Client

// InitTokenCache initializes the Redis client for OAuth token storage.
func InitTokenCache() {
	TokenCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTokenDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := TokenCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Token Cache): %v", err)
	}
}

// GetTokenCacheClient returns the Redis client for OAuth token storage.
func GetTokenCacheClient() *redis.Client {
	if TokenCacheClient == nil {
		InitTokenCache()
	}
	return TokenCacheClient
}

// NewQueueClient returns a client on the task queue DB, used for health pings.
func NewQueueClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
}
