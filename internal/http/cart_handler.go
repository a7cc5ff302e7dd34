package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fjod/go_pharmacy/internal/cart"
	"github.com/fjod/go_pharmacy/internal/checkout"
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	catalog CatalogService
}

func NewCartHandler(c CatalogService) *CartHandler {
	return &CartHandler{catalog: c}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartResponse struct {
	cart.Summary
	DeliveryFee           decimal.Decimal `json:"delivery_fee"`
	Payable               decimal.Decimal `json:"payable"`
	FreeDeliveryThreshold int             `json:"free_delivery_threshold"`
}

func newCartResponse(sess *session.Session) CartResponse {
	summary := sess.Cart.Summary()
	if summary.Lines == nil {
		summary.Lines = []domain.CartLine{}
	}
	return CartResponse{
		Summary:               summary,
		DeliveryFee:           checkout.DeliveryFee(summary.TotalPrice),
		Payable:               checkout.Payable(summary.TotalPrice),
		FreeDeliveryThreshold: checkout.FreeDeliveryThreshold,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, newCartResponse(sess))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	sess.Cart.Add(product)
	respondJSON(w, r, http.StatusCreated, newCartResponse(sess))
}

// UpdateQuantity sets an absolute quantity. Zero or negative removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, r, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	sess.Cart.UpdateQuantity(chi.URLParam(r, "product_id"), *req.Quantity)
	respondJSON(w, r, http.StatusOK, newCartResponse(sess))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	sess.Cart.Remove(chi.URLParam(r, "product_id"))
	respondJSON(w, r, http.StatusOK, newCartResponse(sess))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	sess.Cart.Clear()
	respondJSON(w, r, http.StatusOK, newCartResponse(sess))
}

func requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", "no session attached to request")
		return nil, false
	}
	return sess, true
}
