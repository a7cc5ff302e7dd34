package domain

import "time"

type EventType string

const (
	EventItemAdded       EventType = "ItemAdded"
	EventItemRemoved     EventType = "ItemRemoved"
	EventQuantityChanged EventType = "QuantityChanged"
	EventCartCleared     EventType = "CartCleared"
	EventOrderPlaced     EventType = "OrderPlaced"
	EventOrderFailed     EventType = "OrderFailed"
)

// Event is a semantic notification emitted by the core. Presentation layers decide how
// (and whether) to show it.
type Event struct {
	Type           EventType `json:"type"`
	SessionID      string    `json:"session_id,omitempty"`
	ProductID      string    `json:"product_id,omitempty"`
	Quantity       int       `json:"quantity,omitempty"`
	OrderReference string    `json:"order_reference,omitempty"`
	Error          string    `json:"error,omitempty"`
	Retryable      bool      `json:"retryable,omitempty"`
	At             time.Time `json:"at"`
}
