package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"FeedRewriter/internal/config"
	"FeedRewriter/internal/ports"
)

const keyPrefix = "feedrewriter:publish:"

// RedisGuard is a short-lived publish lock shared by every process pointed at the same Redis.
type RedisGuard struct {
	client *redis.Client
}

var _ ports.PublishGuard = (*RedisGuard)(nil)

// NewRedisGuard connects to cfg.Addr.
func NewRedisGuard(cfg config.GuardConfig) *RedisGuard {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisGuard{client: client}
}

// NewRedisGuardWithClient wraps an existing client.
func NewRedisGuardWithClient(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

// Ping checks connectivity.
func (g *RedisGuard) Ping(ctx context.Context) error {
	if err := g.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Acquire takes the lock for key. It reports false when the key is already held.
func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire publish lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock, used when the publish itself failed.
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release publish lock: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (g *RedisGuard) Close() error {
	return g.client.Close()
}
