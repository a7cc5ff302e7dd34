package domain

import (
	"errors"
	"strings"
)

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
	PaymentMethodCOD        PaymentMethod = "cod"
)

// DefaultPaymentMethod is pre-selected when the payment step opens.
const DefaultPaymentMethod = PaymentMethodUPI

func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodUPI, PaymentMethodCard, PaymentMethodNetBanking, PaymentMethodCOD}
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodUPI:
		return "UPI"
	case PaymentMethodCard:
		return "Credit / Debit Card"
	case PaymentMethodNetBanking:
		return "Net Banking"
	case PaymentMethodCOD:
		return "Cash on Delivery"
	default:
		return "UNKNOWN"
	}
}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods() {
		if m == known {
			return true
		}
	}
	return false
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", ErrUnknownPaymentMethod
	}
	return m, nil
}
