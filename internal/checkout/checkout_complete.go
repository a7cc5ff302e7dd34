package checkout

import (
	"context"
	"errors"

	"github.com/fjod/go_pharmacy/internal/domain"
)

var errNoConfirmation = errors.New("order service returned no confirmation")

// finishSubmission settles a submission. Leaving the flow or a cancelled caller abandons
// it; a caller deadline is a timeout like any other and leaves the session retryable.
func (s *Session) finishSubmission(
	ctx context.Context,
	req domain.OrderRequest,
	conf *domain.OrderConfirmation,
	submitErr error) (*domain.OrderConfirmation, error) {

	s.mu.Lock()
	abandoned := s.closed || errors.Is(ctx.Err(), context.Canceled)
	s.submitting = false
	if s.cancelSubmit != nil {
		s.cancelSubmit()
		s.cancelSubmit = nil
	}

	// Abandoned submissions never touch the cart, whatever the service answered.
	if abandoned {
		s.mu.Unlock()
		s.seq.log.Info("order submission abandoned", "session_id", s.sessionID)
		return nil, ErrSubmissionCancelled
	}

	if submitErr == nil && conf == nil {
		submitErr = errNoConfirmation
	}
	if submitErr != nil {
		subErr := s.failLocked(submitErr)
		s.mu.Unlock()
		s.sink.Emit(domain.Event{
			Type:      domain.EventOrderFailed,
			SessionID: s.sessionID,
			Error:     submitErr.Error(),
			Retryable: subErr.Retryable,
			At:        s.seq.now(),
		})
		return nil, subErr
	}

	s.completeLocked(req.Lines, conf)
	s.mu.Unlock()
	s.sink.Emit(domain.Event{
		Type:           domain.EventOrderPlaced,
		SessionID:      s.sessionID,
		OrderReference: conf.Reference,
		At:             s.seq.now(),
	})
	return conf, nil
}

func (s *Session) failLocked(err error) *SubmissionError {
	subErr := &SubmissionError{Err: err, Retryable: retryable(err)}
	s.lastErr = subErr
	s.step = domain.CheckoutStepPayment
	s.seq.log.Error("order submission failed", "session_id", s.sessionID, "retryable", subErr.Retryable, "error", err)
	return subErr
}

// completeLocked is the only place the checkout flow touches the cart. Only what was ordered
// leaves it; items added while the order was submitting stay.
func (s *Session) completeLocked(ordered []domain.CartLine, conf *domain.OrderConfirmation) {
	s.cart.RemoveOrdered(ordered)
	s.confirmation = conf
	s.step = domain.CheckoutStepConfirmation
	s.lastErr = nil
	s.seq.log.Info("order placed", "session_id", s.sessionID, "reference", conf.Reference, "payable", conf.Payable.String())
}
