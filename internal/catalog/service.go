package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_pharmacy/internal/cache"
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/logger"
	"golang.org/x/sync/singleflight"
)

// Service is the catalog query surface used by the HTTP layer and the cart handlers.
// Listings are read through the cache; concurrent misses share one provider call.
type Service struct {
	provider Provider
	cache    cache.CatalogCache
	log      *logger.Logger
	group    singleflight.Group
}

func NewService(provider Provider, c cache.CatalogCache, log *logger.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		provider: provider,
		cache:    c,
		log:      log.With("component", "catalog"),
	}
}

func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	products, err := s.cache.GetProducts(ctx)
	if err == nil {
		return products, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("catalog cache read failed, falling back to database", "error", err)
	}

	v, err, _ := s.group.Do("products", func() (interface{}, error) {
		products, err := s.provider.ListProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		if err := s.cache.SetProducts(ctx, products); err != nil {
			s.log.Warn("catalog cache write failed", "error", err)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

func (s *Service) Query(ctx context.Context, q Query) ([]domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(products, q), nil
}

// Product looks the id up in the cached listing and goes to the provider for a single row
// when the listing is not cached or does not have it.
func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	if products, err := s.cache.GetProducts(ctx); err == nil {
		for _, p := range products {
			if p.ID == id {
				return p, nil
			}
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("catalog cache read failed, falling back to database", "error", err)
	}

	p, err := s.provider.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// Refresh drops the cached listing and loads it again from the provider. The cache may be
// shared with processes that served an older catalog, so it is refreshed after migrations.
func (s *Service) Refresh(ctx context.Context) ([]domain.Product, error) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("catalog cache invalidation failed", "error", err)
	}
	s.group.Forget("products")
	return s.Products(ctx)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return Categories(products), nil
}
