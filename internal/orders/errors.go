package orders

import "errors"

var (
	// ErrRejected means the order service refused the order. Retrying the same request will not help.
	ErrRejected = errors.New("order rejected by order service")
	// ErrUnavailable means the order service could not be reached or failed; the request may be retried.
	ErrUnavailable = errors.New("order service unavailable")
)
