package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jkstudio99/DropStockAPI/internal/domain"
	apperrors "github.com/jkstudio99/DropStockAPI/pkg/errors"
)

const productKeyPrefix = "product:"

// ProductCache is a read-through cache for single product lookups.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache creates a Redis-backed product cache.
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached product by ID. A cache miss surfaces as ErrNotFound
// so callers fall through to the store.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	key := productKeyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get product: %w", err)
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}

	return &product, nil
}

// Set caches a product with the configured TTL.
func (c *ProductCache) Set(ctx context.Context, product *domain.Product) error {
	key := productKeyPrefix + product.ID

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set product: %w", err)
	}

	return nil
}

// Delete invalidates a cached product after a write.
func (c *ProductCache) Delete(ctx context.Context, id string) error {
	key := productKeyPrefix + id

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del product: %w", err)
	}

	return nil
}
