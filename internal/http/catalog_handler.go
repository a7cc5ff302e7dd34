package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_pharmacy/internal/catalog"
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CatalogService is the read side of the catalog used by the handlers.
type CatalogService interface {
	Query(ctx context.Context, q catalog.Query) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type CatalogHandler struct {
	catalog CatalogService
}

func NewCatalogHandler(c CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

type ProductListResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
	Sort     catalog.Sort     `json:"sort"`
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := catalog.Query{
		Category: r.URL.Query().Get("category"),
		Text:     r.URL.Query().Get("q"),
		Sort:     catalog.ParseSort(r.URL.Query().Get("sort")),
	}

	products, err := h.catalog.Query(r.Context(), q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	respondJSON(w, r, http.StatusOK, ProductListResponse{Products: products, Count: len(products), Sort: q.Sort})
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Product(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, product)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, r, http.StatusOK, map[string][]string{"categories": categories})
}
