package utils

import (
	"context"
	"log"
	"time"

	"chargehub/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// NotifyClient is the dedicated client for realtime notification fan-out.
	NotifyClient *redis.Client
)

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitNotifyClient initializes the Redis client used to publish user events.
func InitNotifyClient() {
	NotifyClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NotifyClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Notify): %v", err)
	}
}

// GetNotifyClient returns the Redis client for notification fan-out.
func GetNotifyClient() *redis.Client {
	if NotifyClient == nil {
		InitNotifyClient()
	}
	return NotifyClient
}
