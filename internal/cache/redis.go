package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"threadkart/internal/model"

	"github.com/redis/go-redis/v9"
)

const featuredKey = "featured_products"

// redisFeaturedCache implements FeaturedCache on redis with a fixed TTL.
type redisFeaturedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFeaturedCache creates a redis-backed featured-products cache.
func NewRedisFeaturedCache(client *redis.Client) FeaturedCache {
	return &redisFeaturedCache{
		client: client,
		ttl:    time.Hour,
	}
}

func (c *redisFeaturedCache) Get(ctx context.Context) ([]model.Product, error) {
	data, err := c.client.Get(ctx, featuredKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal featured products failed: %w", err)
	}

	return products, nil
}

func (c *redisFeaturedCache) Set(ctx context.Context, products []model.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal featured products failed: %w", err)
	}

	if err := c.client.Set(ctx, featuredKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisFeaturedCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, featuredKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}
