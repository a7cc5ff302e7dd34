package checkout

import (
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// FreeDeliveryThreshold is the subtotal from which delivery is free.
	FreeDeliveryThreshold = 299
	// StandardDeliveryFee is charged below FreeDeliveryThreshold.
	StandardDeliveryFee = 49
)

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Savings     decimal.Decimal `json:"savings"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Payable     decimal.Decimal `json:"payable"`
	TotalItems  int             `json:"total_items"`
}

func DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(decimal.NewFromInt(FreeDeliveryThreshold)) {
		return decimal.Zero
	}
	return decimal.NewFromInt(StandardDeliveryFee)
}

func Payable(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(DeliveryFee(subtotal))
}

func ComputeTotals(lines []domain.CartLine) Totals {
	t := Totals{Subtotal: decimal.Zero, Savings: decimal.Zero}
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal())
		t.Savings = t.Savings.Add(l.Savings())
		t.TotalItems += l.Quantity
	}
	t.DeliveryFee = DeliveryFee(t.Subtotal)
	t.Payable = t.Subtotal.Add(t.DeliveryFee)
	return t
}
