package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_pharmacy/internal/catalog"
	"github.com/fjod/go_pharmacy/internal/checkout"
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/session"
)

type ErrorResponse struct {
	Error     string           `json:"error"`
	Code      string           `json:"code,omitempty"`
	Details   string           `json:"details,omitempty"`
	Outcome   checkout.Outcome `json:"outcome,omitempty"`
	Retryable bool             `json:"retryable,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		loggerFromContext(r.Context()).Warn("failed to encode response", "status", status, "error", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts core errors to HTTP status codes.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var subErr *checkout.SubmissionError
	resp := ErrorResponse{Error: err.Error()}
	var httpStatus int

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		httpStatus, resp.Code, resp.Outcome = http.StatusConflict, "empty_cart", checkout.OutcomeShowEmptyCart
	case errors.As(err, &subErr):
		resp.Retryable = subErr.Retryable
		switch {
		case errors.Is(err, checkout.ErrSubmissionTimeout):
			httpStatus, resp.Code = http.StatusGatewayTimeout, "timeout"
		case subErr.Retryable:
			httpStatus, resp.Code = http.StatusServiceUnavailable, "service_unavailable"
		default:
			httpStatus, resp.Code = http.StatusUnprocessableEntity, "order_rejected"
		}
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		httpStatus, resp.Code = http.StatusConflict, "submission_in_progress"
	case errors.Is(err, checkout.ErrSubmissionCancelled):
		httpStatus, resp.Code = http.StatusConflict, "submission_cancelled"
	case errors.Is(err, checkout.ErrIllegalTransition):
		httpStatus, resp.Code = http.StatusConflict, "illegal_transition"
	case errors.Is(err, checkout.ErrWrongStep):
		httpStatus, resp.Code = http.StatusConflict, "wrong_step"
	case errors.Is(err, checkout.ErrSessionClosed):
		httpStatus, resp.Code = http.StatusConflict, "checkout_closed"
	case errors.Is(err, session.ErrNoCheckout):
		httpStatus, resp.Code = http.StatusNotFound, "no_checkout"
	case errors.Is(err, catalog.ErrProductNotFound):
		httpStatus, resp.Code = http.StatusNotFound, "product_not_found"
	case errors.Is(err, checkout.ErrUnknownAddress):
		httpStatus, resp.Code = http.StatusBadRequest, "unknown_address"
	case errors.Is(err, checkout.ErrNoAddressSelected):
		httpStatus, resp.Code = http.StatusBadRequest, "no_address_selected"
	case errors.Is(err, domain.ErrUnknownPaymentMethod):
		httpStatus, resp.Code = http.StatusBadRequest, "unknown_payment_method"
	default:
		httpStatus, resp.Code, resp.Error = http.StatusInternalServerError, "internal_error", "internal server error"
		loggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}

	respondJSON(w, r, httpStatus, resp)
}
