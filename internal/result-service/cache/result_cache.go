package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyDraw(drawID string) string { return "result:current:" + drawID }

// GetResult busca o resultado declarado de um draw no cache.
func (c *Cache) GetResult(ctx context.Context, drawID string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyDraw(drawID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

// SetResult guarda o resultado declarado de um draw no cache.
func (c *Cache) SetResult(ctx context.Context, drawID string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyDraw(drawID), b, ttl).Err()
}
