package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/orders"
	"github.com/google/uuid"
)

// PlaceOrder submits the cart to the order service and, only once the service confirmed the
// order, clears the cart and moves to the confirmation step. A call made while a submission
// is already running changes nothing and returns ErrSubmissionInProgress.
func (s *Session) PlaceOrder(ctx context.Context) (*domain.OrderConfirmation, error) {
	req, submitCtx, err := s.beginSubmission(ctx)
	if err != nil {
		return nil, err
	}

	conf, submitErr := s.seq.submit(submitCtx, req)
	return s.finishSubmission(submitCtx, req, conf, submitErr)
}

func (s *Session) beginSubmission(ctx context.Context) (domain.OrderRequest, context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return domain.OrderRequest{}, nil, ErrSubmissionInProgress
	}
	if err := s.guardLocked(); err != nil {
		return domain.OrderRequest{}, nil, err
	}
	if !domain.CanTransitionTo(s.step, domain.CheckoutStepConfirmation) {
		return domain.OrderRequest{}, nil, ErrIllegalTransition
	}
	address, ok := s.seq.findAddress(s.addressID)
	if !ok {
		return domain.OrderRequest{}, nil, ErrNoAddressSelected
	}

	lines := s.cart.Lines()
	totals := ComputeTotals(lines)
	req := domain.OrderRequest{
		IdempotencyKey: uuid.NewString(),
		SessionID:      s.sessionID,
		Lines:          lines,
		Address:        address,
		PaymentMethod:  s.payment,
		Subtotal:       totals.Subtotal,
		DeliveryFee:    totals.DeliveryFee,
		Payable:        totals.Payable,
	}

	submitCtx, cancel := context.WithCancel(ctx)
	s.submitting = true
	s.cancelSubmit = cancel
	s.attempts++
	s.lastErr = nil
	return req, submitCtx, nil
}

// submit calls the order service with a per-attempt timeout, retrying retryable failures.
func (q *Sequencer) submit(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	var lastErr error
	for attempt := 1; attempt <= q.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, q.cfg.SubmitTimeout)
		conf, err := q.submitter.Submit(attemptCtx, req)
		cancel()
		if err == nil {
			return conf, nil
		}
		if ctx.Err() != nil {
			return nil, stopped(ctx.Err())
		}
		err = stopped(err)
		lastErr = err
		if !retryable(err) {
			break
		}
		q.log.Warn("order submission attempt failed",
			"session_id", req.SessionID, "attempt", attempt, "max_attempts", q.cfg.MaxAttempts, "error", err)

		if attempt < q.cfg.MaxAttempts && q.cfg.RetryBackoff > 0 {
			timer := time.NewTimer(q.cfg.RetryBackoff * time.Duration(attempt))
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, stopped(ctx.Err())
			}
		}
	}
	return nil, lastErr
}

// stopped classifies a context error: a deadline is a submission timeout, a cancellation
// is passed through as is.
func stopped(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrSubmissionTimeout) {
		return fmt.Errorf("%w: %w", ErrSubmissionTimeout, err)
	}
	return err
}

func retryable(err error) bool {
	return !errors.Is(err, orders.ErrRejected)
}
