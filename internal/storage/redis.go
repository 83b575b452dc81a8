package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"couple-kitchen/internal/domain"

	"github.com/redis/go-redis/v9"
)

const menuKey = "menu:approved"

func dishRatingKey(name string) string {
	return "rating:dish:" + name
}

// RedisCache holds the approved-menu snapshot for the polling read path and
// the per-dish rating aggregates written by the aggregator.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

// GetMenu returns a nil slice on cache miss.
func (c *RedisCache) GetMenu(ctx context.Context) ([]domain.Dish, error) {
	payload, err := c.Client.Get(ctx, menuKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dishes []domain.Dish
	if err := json.Unmarshal(payload, &dishes); err != nil {
		return nil, err
	}
	if dishes == nil {
		dishes = []domain.Dish{}
	}
	return dishes, nil
}

func (c *RedisCache) SetMenu(ctx context.Context, dishes []domain.Dish) error {
	payload, err := json.Marshal(dishes)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, menuKey, payload, c.TTL).Err()
}

func (c *RedisCache) InvalidateMenu(ctx context.Context) error {
	return c.Client.Del(ctx, menuKey).Err()
}

func (c *RedisCache) GetDishRating(ctx context.Context, name string) (float64, int, bool, error) {
	fields, err := c.Client.HGetAll(ctx, dishRatingKey(name)).Result()
	if err != nil {
		return 0, 0, false, err
	}
	if len(fields) == 0 {
		return 0, 0, false, nil
	}

	avg, err := strconv.ParseFloat(fields["avg_rating"], 64)
	if err != nil {
		return 0, 0, false, err
	}
	count, err := strconv.Atoi(fields["rating_count"])
	if err != nil {
		return 0, 0, false, err
	}
	return avg, count, true, nil
}

func (c *RedisCache) SetDishRating(ctx context.Context, name string, avg float64, count int) error {
	key := dishRatingKey(name)
	if err := c.Client.HSet(ctx, key, map[string]interface{}{
		"avg_rating":   avg,
		"rating_count": count,
		"last_updated": time.Now().Unix(),
	}).Err(); err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, 24*time.Hour).Err()
}
