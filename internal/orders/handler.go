package orders

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/logger"
)

// Handler exposes a Submitter as the order service HTTP endpoint that HTTPClient calls.
// It lets one storefront process act as the order service for others.
type Handler struct {
	submitter Submitter
	log       *logger.Logger
}

func NewHandler(submitter Submitter, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{submitter: submitter, log: log.With("component", "orders-handler")}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Code: "method_not_allowed"})
		return
	}

	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body", Code: "invalid_request"})
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	conf, err := h.submitter.Submit(r.Context(), req)
	if err != nil {
		h.log.Warn("order not placed", "session_id", req.SessionID, "error", err)
		switch {
		case errors.Is(err, ErrRejected):
			h.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Code: "order_rejected"})
		default:
			h.writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error(), Code: "service_unavailable"})
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, conf)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn("failed to encode response", "status", status, "error", err)
	}
}
