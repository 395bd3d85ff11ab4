package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.CharacterImageCache = (*redisImageCache)(nil)

type redisImageCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisImageCache creates a Redis-backed character image map cache.
func NewRedisImageCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.CharacterImageCache {
	return &redisImageCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisImageCache"),
	}
}

func imageCacheKey(characterID int64) string {
	return fmt.Sprintf("character_images:%d", characterID)
}

func (c *redisImageCache) Get(ctx context.Context, characterID int64) (map[string]string, error) {
	raw, err := c.client.Get(ctx, imageCacheKey(characterID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		c.logger.Warn("Failed to read image cache", zap.Int64("characterID", characterID), zap.Error(err))
		return nil, err
	}

	var images map[string]string
	if err := json.Unmarshal(raw, &images); err != nil {
		// Поврежденная запись: ведем себя как при промахе
		c.logger.Warn("Corrupted image cache entry", zap.Int64("characterID", characterID), zap.Error(err))
		return nil, models.ErrNotFound
	}
	return images, nil
}

func (c *redisImageCache) Set(ctx context.Context, characterID int64, images map[string]string) error {
	raw, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("failed to marshal image map: %w", err)
	}

	if err := c.client.Set(ctx, imageCacheKey(characterID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write image cache", zap.Int64("characterID", characterID), zap.Error(err))
		return err
	}
	return nil
}
