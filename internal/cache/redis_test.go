package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, "storefront", 10*time.Minute)

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return c, mr, cleanup
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "dolo-650", Name: "Dolo 650 Tablet", Category: "Pain Relief",
			Price: decimal.NewFromInt(28), MRP: decimal.NewFromInt(35), Discount: 20, InStock: true},
		{ID: "crocin-advance", Name: "Crocin Advance", Category: "Pain Relief",
			Price: decimal.RequireFromString("25.2"), MRP: decimal.NewFromInt(28), Discount: 10, InStock: true},
	}
}

func TestSetThenGet(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.SetProducts(ctx, sampleProducts()))
	assert.True(t, mr.Exists("storefront:products:all"))

	got, err := c.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "dolo-650", got[0].ID)
	assert.True(t, got[1].Price.Equal(decimal.RequireFromString("25.2")))
}

func TestGet_CacheMiss(t *testing.T) {
	c, _, cleanup := setupTestRedis(t)
	defer cleanup()

	got, err := c.GetProducts(context.Background())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestGet_InvalidJSON(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set("storefront:products:all", "{not json"))

	_, err := c.GetProducts(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Contains(t, err.Error(), "unmarshal products failed")
}

func TestSet_TTLIncludesJitter(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, c.SetProducts(context.Background(), sampleProducts()))

	ttl := mr.TTL("storefront:products:all")
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 15*time.Minute)
}

func TestSet_ExpiresAfterTTL(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.SetProducts(ctx, sampleProducts()))
	mr.FastForward(15 * time.Minute)

	_, err := c.GetProducts(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestInvalidate(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.SetProducts(ctx, sampleProducts()))
	require.NoError(t, c.Invalidate(ctx))
	assert.False(t, mr.Exists("storefront:products:all"))

	require.NoError(t, c.Invalidate(ctx), "deleting a missing key is not an error")
}

func TestRedisDown(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	mr.Close()

	_, err := c.GetProducts(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	assert.Error(t, c.SetProducts(context.Background(), sampleProducts()))
}

func TestNoop(t *testing.T) {
	var c CatalogCache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.SetProducts(ctx, sampleProducts()))
	_, err := c.GetProducts(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Invalidate(ctx))
}
