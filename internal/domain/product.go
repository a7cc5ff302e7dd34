package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrPriceAboveMRP    = errors.New("price is above mrp")
	ErrDiscountMismatch = errors.New("discount does not match price and mrp")
)

// Product is a catalog entry. Products are owned by the catalog and never mutated by the cart.
type Product struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Brand                string          `json:"brand"`
	Category             string          `json:"category"`
	Pack                 string          `json:"pack"`
	Description          string          `json:"description"`
	ImageURL             string          `json:"image_url"`
	Price                decimal.Decimal `json:"price"`
	MRP                  decimal.Decimal `json:"mrp"`
	Discount             int             `json:"discount"`
	PrescriptionRequired bool            `json:"prescription_required"`
	InStock              bool            `json:"in_stock"`
	Rating               float64         `json:"rating"`
	Reviews              int             `json:"reviews"`
	DeliveryTime         string          `json:"delivery_time"`
}

// ExpectedDiscount is round((mrp-price)/mrp*100), or 0 when mrp is not positive.
func (p Product) ExpectedDiscount() int {
	if !p.MRP.IsPositive() {
		return 0
	}
	pct := p.MRP.Sub(p.Price).Div(p.MRP).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// UnitSaving is mrp - price.
func (p Product) UnitSaving() decimal.Decimal {
	return p.MRP.Sub(p.Price)
}

// Validate checks the catalog data-integrity rules. The storefront does not call it on the
// hot path; it guards seeded data in tests and on startup.
func (p Product) Validate() error {
	if p.Price.GreaterThan(p.MRP) {
		return fmt.Errorf("product %s: %w", p.ID, ErrPriceAboveMRP)
	}
	if want := p.ExpectedDiscount(); p.Discount != want {
		return fmt.Errorf("product %s: %w (have %d, want %d)", p.ID, ErrDiscountMismatch, p.Discount, want)
	}
	return nil
}
