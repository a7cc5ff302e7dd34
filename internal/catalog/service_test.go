package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_pharmacy/internal/cache"
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider implements Provider for testing
type MockProvider struct {
	products []domain.Product
	err      error
	delay    time.Duration
	calls    atomic.Int32
	getCalls atomic.Int32
}

func (m *MockProvider) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.products, m.err
}

func (m *MockProvider) GetProduct(_ context.Context, id string) (domain.Product, error) {
	m.getCalls.Add(1)
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrProductNotFound
}

func newRedisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client, "test", time.Minute), mr
}

func TestService_ReadsThroughCache(t *testing.T) {
	provider := &MockProvider{products: fixture()}
	c, mr := newRedisCache(t)
	svc := NewService(provider, c, logger.NewNop())
	ctx := context.Background()

	first, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 5)
	assert.True(t, mr.Exists("test:products:all"))

	second, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, int32(1), provider.calls.Load(), "second read is served by the cache")
}

func TestService_CacheDownFallsBackToProvider(t *testing.T) {
	provider := &MockProvider{products: fixture()}
	c, mr := newRedisCache(t)
	mr.Close()
	svc := NewService(provider, c, logger.NewNop())

	products, err := svc.Products(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, 5)
}

func TestService_ProviderError(t *testing.T) {
	provider := &MockProvider{err: errors.New("disk gone")}
	svc := NewService(provider, nil, nil)

	_, err := svc.Products(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestService_ConcurrentMissesShareOneLoad(t *testing.T) {
	provider := &MockProvider{products: fixture(), delay: 50 * time.Millisecond}
	svc := NewService(provider, cache.Noop{}, logger.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			products, err := svc.Products(context.Background())
			assert.NoError(t, err)
			assert.Len(t, products, 5)
		}()
	}
	wg.Wait()

	assert.Less(t, provider.calls.Load(), int32(10))
}

func TestService_QueryProductCategories(t *testing.T) {
	svc := NewService(&MockProvider{products: fixture()}, nil, logger.NewNop())
	ctx := context.Background()

	products, err := svc.Query(ctx, Query{Category: "Allergy", Sort: SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ids(products))

	product, err := svc.Product(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "Volini", product.Name)

	_, err = svc.Product(ctx, "zzz")
	assert.ErrorIs(t, err, ErrProductNotFound)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pain Relief", "Allergy", "Vitamins"}, categories)
}

func TestService_OverSQLite(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewService(repo, nil, logger.NewNop())

	products, err := svc.Query(context.Background(), Query{Text: "paracetamol"})
	require.NoError(t, err)
	assert.Empty(t, products, "description is not searched")

	products, err = svc.Query(context.Background(), Query{Category: "Diabetes Care", Sort: SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"glycomet-500", "accu-chek-strips"}, ids(products))
}

func TestService_ProductUsesCachedListing(t *testing.T) {
	provider := &MockProvider{products: fixture()}
	c, _ := newRedisCache(t)
	svc := NewService(provider, c, logger.NewNop())
	ctx := context.Background()

	_, err := svc.Products(ctx)
	require.NoError(t, err)

	product, err := svc.Product(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "Volini", product.Name)
	assert.Equal(t, int32(0), provider.getCalls.Load())
}

func TestService_ProductMissGoesToProvider(t *testing.T) {
	provider := &MockProvider{products: fixture()}
	svc := NewService(provider, cache.Noop{}, logger.NewNop())
	ctx := context.Background()

	product, err := svc.Product(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "Volini", product.Name)
	assert.Equal(t, int32(1), provider.getCalls.Load())
	assert.Equal(t, int32(0), provider.calls.Load(), "a single product does not load the listing")

	_, err = svc.Product(ctx, "zzz")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_RefreshReplacesStaleListing(t *testing.T) {
	provider := &MockProvider{products: fixture()}
	c, _ := newRedisCache(t)
	ctx := context.Background()

	stale := fixture()[:1]
	require.NoError(t, c.SetProducts(ctx, stale))
	svc := NewService(provider, c, logger.NewNop())

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	products, err = svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 5)

	cached, err := c.GetProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 5)
	assert.Equal(t, int32(1), provider.calls.Load())
}
