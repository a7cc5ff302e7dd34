package domain

type CheckoutStep string

const (
	CheckoutStepAddress      CheckoutStep = "ADDRESS"
	CheckoutStepPayment      CheckoutStep = "PAYMENT"
	CheckoutStepConfirmation CheckoutStep = "CONFIRMATION"
)

func (s CheckoutStep) IsTerminal() bool {
	return s == CheckoutStepConfirmation
}

// String representation (for logging)
func (s CheckoutStep) String() string {
	return string(s)
}

// CanTransitionTo reports whether the stepper may move from one step to another.
// Confirmation has no outgoing transitions; leaving the flow discards the session instead.
func CanTransitionTo(from, to CheckoutStep) bool {
	switch from {
	case CheckoutStepAddress:
		return to == CheckoutStepPayment
	case CheckoutStepPayment:
		return to == CheckoutStepAddress || to == CheckoutStepConfirmation
	default:
		return false
	}
}
