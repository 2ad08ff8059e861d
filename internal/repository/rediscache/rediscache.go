// FilePath: internal/repository/rediscache/rediscache.go
package rediscache

import (
	"context"
	"fmt"

	"github.com/greenstem/planthub/internal/config"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// LatestReadingCache keeps the most recent telemetry value per device
// key in a Redis hash so the status endpoint does not have to hit the
// measurement store. Cache misses and write failures are non-fatal.
type LatestReadingCache struct {
	client *redis.Client
}

func New(cfg config.RedisConfig) *LatestReadingCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &LatestReadingCache{client: client}
}

func deviceKey(deviceID int64) string {
	return fmt.Sprintf("device:%d:latest", deviceID)
}

// Set stores one reading for the device. Errors are logged, not
// returned; the measurement store remains the source of truth.
func (c *LatestReadingCache) Set(ctx context.Context, deviceID int64, key, value string) {
	if err := c.client.HSet(ctx, deviceKey(deviceID), key, value).Err(); err != nil {
		nuts.L.Warnf("[LatestReadingCache] Failed to cache reading for device %d: %v", deviceID, err)
	}
}

// Get returns all cached readings for the device. A missing hash yields
// an empty map.
func (c *LatestReadingCache) Get(ctx context.Context, deviceID int64) (map[string]string, error) {
	readings, err := c.client.HGetAll(ctx, deviceKey(deviceID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached readings for device %d: %w", deviceID, err)
	}
	return readings, nil
}

// Invalidate drops the cached readings for a device, used on device
// deletion.
func (c *LatestReadingCache) Invalidate(ctx context.Context, deviceID int64) {
	if err := c.client.Del(ctx, deviceKey(deviceID)).Err(); err != nil {
		nuts.L.Warnf("[LatestReadingCache] Failed to invalidate cache for device %d: %v", deviceID, err)
	}
}

// Close releases the underlying Redis connection.
func (c *LatestReadingCache) Close() error {
	return c.client.Close()
}
