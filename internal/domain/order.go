package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// OrderConfirmation is produced only by a successful order submission.
type OrderConfirmation struct {
	Reference         string          `json:"reference"`
	AddressSummary    string          `json:"address_summary"`
	PaymentLabel      string          `json:"payment_label"`
	Items             []CartLine      `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DeliveryFee       decimal.Decimal `json:"delivery_fee"`
	Payable           decimal.Decimal `json:"payable"`
	EstimatedDelivery DeliveryWindow  `json:"estimated_delivery"`
	PlacedAt          time.Time       `json:"placed_at"`
}

// OrderRequest is what the checkout flow hands to the order submission service.
type OrderRequest struct {
	IdempotencyKey string          `json:"idempotency_key"`
	SessionID      string          `json:"session_id"`
	Lines          []CartLine      `json:"lines"`
	Address        Address         `json:"address"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Payable        decimal.Decimal `json:"payable"`
}
