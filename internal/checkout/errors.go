package checkout

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition    = errors.New("illegal transition of checkout step")
	ErrWrongStep            = errors.New("operation not allowed in current checkout step")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrSubmissionCancelled  = errors.New("order submission cancelled")
	ErrSubmissionTimeout    = errors.New("order submission timed out")
	ErrSessionClosed        = errors.New("checkout session is closed")
	ErrUnknownAddress       = errors.New("unknown address")
	ErrNoAddressSelected    = errors.New("no delivery address selected")
)

// SubmissionError is returned by PlaceOrder when the order submission service failed or
// timed out. The cart is untouched and the session is back on the payment step.
type SubmissionError struct {
	Err       error
	Retryable bool
}

func (e *SubmissionError) Error() string {
	return "order submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }
