package catalog

import (
	"context"
	"errors"

	"github.com/fjod/go_pharmacy/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Provider is the read-only source of the product catalog.
type Provider interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}
