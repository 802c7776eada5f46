package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type RedisCache struct {
	client *redis.Client
}

var _ TokenBlocklist = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := GenerateRevokedTokenKey(tokenID)
	if err := r.client.Set(ctx, key, 1, ttl).Err(); err != nil {
		logger.Error("Failed to set value in Redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("写入 Redis 失败: %w", err)
	}
	return nil
}

func (r *RedisCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	key := GenerateRevokedTokenKey(tokenID)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		logger.Error("Failed to check key in Redis", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("从 Redis 读取失败: %w", err)
	}
	return n > 0, nil
}
