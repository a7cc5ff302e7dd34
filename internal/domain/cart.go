package domain

import "github.com/shopspring/decimal"

// CartLine is a product together with the quantity selected for purchase.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price * quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Savings is (mrp - price) * quantity.
func (l CartLine) Savings() decimal.Decimal {
	return l.Product.UnitSaving().Mul(decimal.NewFromInt(int64(l.Quantity)))
}
