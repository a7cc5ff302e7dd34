package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_ExpectedDiscount(t *testing.T) {
	tests := []struct {
		name  string
		price int64
		mrp   int64
		want  int
	}{
		{"no discount", 100, 100, 0},
		{"twenty percent", 28, 35, 20},
		{"rounds half up", 35, 40, 13},
		{"rounds down", 89, 134, 34},
		{"zero mrp", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: decimal.NewFromInt(tt.price), MRP: decimal.NewFromInt(tt.mrp)}
			assert.Equal(t, tt.want, p.ExpectedDiscount())
		})
	}
}

func TestProduct_Validate(t *testing.T) {
	ok := Product{ID: "p1", Price: decimal.NewFromInt(28), MRP: decimal.NewFromInt(35), Discount: 20}
	require.NoError(t, ok.Validate())

	above := Product{ID: "p2", Price: decimal.NewFromInt(40), MRP: decimal.NewFromInt(35)}
	assert.ErrorIs(t, above.Validate(), ErrPriceAboveMRP)

	wrong := Product{ID: "p3", Price: decimal.NewFromInt(28), MRP: decimal.NewFromInt(35), Discount: 25}
	assert.ErrorIs(t, wrong.Validate(), ErrDiscountMismatch)
}

func TestCartLine_Totals(t *testing.T) {
	line := CartLine{
		Product:  Product{Price: decimal.NewFromInt(28), MRP: decimal.NewFromInt(35)},
		Quantity: 2,
	}
	assert.True(t, line.Subtotal().Equal(decimal.NewFromInt(56)))
	assert.True(t, line.Savings().Equal(decimal.NewFromInt(14)))
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, CanTransitionTo(CheckoutStepAddress, CheckoutStepPayment))
	assert.True(t, CanTransitionTo(CheckoutStepPayment, CheckoutStepAddress))
	assert.True(t, CanTransitionTo(CheckoutStepPayment, CheckoutStepConfirmation))

	assert.False(t, CanTransitionTo(CheckoutStepAddress, CheckoutStepConfirmation))
	assert.False(t, CanTransitionTo(CheckoutStepConfirmation, CheckoutStepAddress))
	assert.False(t, CanTransitionTo(CheckoutStepConfirmation, CheckoutStepPayment))
	assert.True(t, CheckoutStepConfirmation.IsTerminal())
	assert.False(t, CheckoutStepPayment.IsTerminal())
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod(" UPI ")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodUPI, m)
	assert.Equal(t, "Cash on Delivery", PaymentMethodCOD.Label())

	_, err = ParsePaymentMethod("bitcoin")
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
}

func TestAddress_Summary(t *testing.T) {
	a := Address{Name: "A. Kumar", Line1: "12 MG Road", City: "Pune", Pincode: "411001"}
	assert.Equal(t, "A. Kumar, 12 MG Road, Pune - 411001", a.Summary())

	book := DefaultAddresses()
	require.NotEmpty(t, book)
	assert.Equal(t, "addr-home", book[0].ID)
}
