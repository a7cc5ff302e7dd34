package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/redis/go-redis/v9"
)

const productsKey = "products:all"

func NewRedisCache(client *redis.Client, prefix string, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = 15 * time.Minute
	}
	return &RedisCache{
		client:  client,
		prefix:  prefix,
		baseTTL: baseTTL,
	}
}

type RedisCache struct {
	client  *redis.Client
	prefix  string
	baseTTL time.Duration
}

func (r RedisCache) GetProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := r.client.Get(ctx, r.key(productsKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err)
	}
	return products, nil
}

func (r RedisCache) SetProducts(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}

	// jitter keeps replicas from expiring the listing at the same moment
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, r.key(productsKey), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(productsKey)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisCache) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return fmt.Sprintf("%s:%s", r.prefix, name)
}
