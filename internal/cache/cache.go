package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_pharmacy/internal/domain"
)

// CatalogCache holds the product listing between catalog database reads.
type CatalogCache interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop never stores anything. Used when no Redis address is configured.
type Noop struct{}

func (Noop) GetProducts(context.Context) ([]domain.Product, error) { return nil, ErrCacheMiss }
func (Noop) SetProducts(context.Context, []domain.Product) error   { return nil }
func (Noop) Invalidate(context.Context) error                      { return nil }
