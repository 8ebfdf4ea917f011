// README: Redis cache for weather snapshots, keyed by a coarse location grid.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"routeroll/internal/types"
)

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl}
}

// Get reports ok=false on a miss.
func (c *RedisCache) Get(ctx context.Context, at types.GeoPoint) (types.WeatherSnapshot, bool, error) {
	raw, err := c.redis.Get(ctx, cacheKey(at)).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.WeatherSnapshot{}, false, nil
	}
	if err != nil {
		return types.WeatherSnapshot{}, false, err
	}
	var w types.WeatherSnapshot
	if err := json.Unmarshal(raw, &w); err != nil {
		return types.WeatherSnapshot{}, false, err
	}
	return w, true, nil
}

func (c *RedisCache) Set(ctx context.Context, at types.GeoPoint, w types.WeatherSnapshot) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, cacheKey(at), raw, c.ttl).Err()
}

// cacheKey buckets to two decimals (about 1 km) so nearby requests share an entry.
func cacheKey(at types.GeoPoint) string {
	return fmt.Sprintf("weather:%.2f:%.2f", at.Lat, at.Lng)
}
