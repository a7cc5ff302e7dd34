package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_pharmacy/internal/checkout"
	"github.com/fjod/go_pharmacy/internal/domain"
)

type CheckoutHandler struct {
	seq *checkout.Sequencer
}

func NewCheckoutHandler(seq *checkout.Sequencer) *CheckoutHandler {
	return &CheckoutHandler{seq: seq}
}

type SelectAddressRequestDTO struct {
	AddressID string `json:"address_id"`
}

type SelectPaymentRequestDTO struct {
	Method string `json:"method"`
}

type OutcomeResponse struct {
	Outcome checkout.Outcome `json:"outcome"`
}

type PaymentOption struct {
	Method domain.PaymentMethod `json:"method"`
	Label  string               `json:"label"`
}

type AddressBookResponse struct {
	Addresses      []domain.Address `json:"addresses"`
	PaymentOptions []PaymentOption  `json:"payment_options"`
}

func (h *CheckoutHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	methods := domain.PaymentMethods()
	options := make([]PaymentOption, len(methods))
	for i, m := range methods {
		options[i] = PaymentOption{Method: m, Label: m.Label()}
	}
	respondJSON(w, r, http.StatusOK, AddressBookResponse{Addresses: h.seq.Addresses(), PaymentOptions: options})
}

// Enter starts checkout. An empty cart is refused with 409 and the SHOW_EMPTY_CART outcome.
func (h *CheckoutHandler) Enter(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	cs, err := sess.BeginCheckout(h.seq)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, cs.View())
}

func (h *CheckoutHandler) View(w http.ResponseWriter, r *http.Request) {
	h.withCheckout(w, r, func(cs *checkout.Session) error {
		respondJSON(w, r, http.StatusOK, cs.View())
		return nil
	})
}

func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	var req SelectAddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.mutate(w, r, func(cs *checkout.Session) error { return cs.SelectAddress(req.AddressID) })
}

func (h *CheckoutHandler) ContinueToPayment(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, (*checkout.Session).ContinueToPayment)
}

func (h *CheckoutHandler) BackToAddress(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, (*checkout.Session).BackToAddress)
}

func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	var req SelectPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		handleError(w, r, err)
		return
	}
	h.mutate(w, r, func(cs *checkout.Session) error { return cs.SelectPayment(method) })
}

// PlaceOrder blocks until the order service answered. On failure the response carries the
// error and the client can fetch the view, which still shows the payment step and the cart.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	h.withCheckout(w, r, func(cs *checkout.Session) error {
		if _, err := cs.PlaceOrder(r.Context()); err != nil {
			return err
		}
		respondJSON(w, r, http.StatusCreated, cs.View())
		return nil
	})
}

func (h *CheckoutHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	outcome, err := sess.AcknowledgeCheckout()
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, OutcomeResponse{Outcome: outcome})
}

func (h *CheckoutHandler) Leave(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, OutcomeResponse{Outcome: sess.LeaveCheckout()})
}

// mutate runs op on the live checkout and responds with the resulting view.
func (h *CheckoutHandler) mutate(w http.ResponseWriter, r *http.Request, op func(*checkout.Session) error) {
	h.withCheckout(w, r, func(cs *checkout.Session) error {
		if err := op(cs); err != nil {
			return err
		}
		respondJSON(w, r, http.StatusOK, cs.View())
		return nil
	})
}

func (h *CheckoutHandler) withCheckout(w http.ResponseWriter, r *http.Request, fn func(*checkout.Session) error) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	cs, err := sess.Checkout()
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := fn(cs); err != nil {
		handleError(w, r, err)
	}
}
