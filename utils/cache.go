// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"curaconnect/config"

	"github.com/go-redis/redis/v8"
)

var (
	// AuthCacheClient is the dedicated client for authorization caching.
	AuthCacheClient *redis.Client
	// OTPCacheClient is the dedicated client for OTP codes.
	OTPCacheClient *redis.Client
	// LockCacheClient is the dedicated client for booking slot locks.
	LockCacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (db %d): %v", db, err)
	}
	return client
}

// InitRedis initializes every Redis client the service uses.
func InitRedis() {
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB)
	OTPCacheClient = newRedisClient(config.AppConfig.RedisOTPDB)
	LockCacheClient = newRedisClient(config.AppConfig.RedisLockDB)
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB)
	}
	return AuthCacheClient
}

// GetOTPCacheClient returns the Redis client for OTP storage.
func GetOTPCacheClient() *redis.Client {
	if OTPCacheClient == nil {
		OTPCacheClient = newRedisClient(config.AppConfig.RedisOTPDB)
	}
	return OTPCacheClient
}

// GetLockCacheClient returns the Redis client backing booking slot locks.
func GetLockCacheClient() *redis.Client {
	if LockCacheClient == nil {
		LockCacheClient = newRedisClient(config.AppConfig.RedisLockDB)
	}
	return LockCacheClient
}
