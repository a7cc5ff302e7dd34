package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/events"
)

// Session is one checkout attempt. It is discarded when the shopper leaves the flow or
// acknowledges the confirmation.
type Session struct {
	seq       *Sequencer
	sessionID string
	cart      Cart
	sink      events.Sink

	mu           sync.Mutex
	step         domain.CheckoutStep
	addressID    string
	payment      domain.PaymentMethod
	submitting   bool
	cancelSubmit context.CancelFunc
	attempts     int
	confirmation *domain.OrderConfirmation
	lastErr      *SubmissionError
	closed       bool
}

type View struct {
	Step          domain.CheckoutStep       `json:"step"`
	Outcome       Outcome                   `json:"outcome,omitempty"`
	EmptyCart     bool                      `json:"empty_cart"`
	Address       *domain.Address           `json:"address,omitempty"`
	PaymentMethod domain.PaymentMethod      `json:"payment_method"`
	PaymentLabel  string                    `json:"payment_label"`
	Submitting    bool                      `json:"submitting"`
	Lines         []domain.CartLine         `json:"lines"`
	Totals        Totals                    `json:"totals"`
	Confirmation  *domain.OrderConfirmation `json:"confirmation,omitempty"`
	LastError     string                    `json:"last_error,omitempty"`
	Retryable     bool                      `json:"retryable,omitempty"`
}

// View is the read model of the session. If the cart was emptied outside the flow before
// confirmation, the view reports the empty-cart state instead of the stepper.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Step:          s.step,
		PaymentMethod: s.payment,
		PaymentLabel:  s.payment.Label(),
		Submitting:    s.submitting,
		Confirmation:  s.confirmation,
	}
	if a, ok := s.seq.findAddress(s.addressID); ok {
		v.Address = &a
	}
	if s.lastErr != nil {
		v.LastError = s.lastErr.Error()
		v.Retryable = s.lastErr.Retryable
	}

	if s.step == domain.CheckoutStepConfirmation {
		v.Lines = s.confirmation.Items
		v.Totals = ComputeTotals(s.confirmation.Items)
		v.Outcome = OutcomeShowConfirmation
		return v
	}

	v.Lines = s.cart.Lines()
	v.Totals = ComputeTotals(v.Lines)
	if len(v.Lines) == 0 {
		v.EmptyCart = true
		v.Outcome = OutcomeShowEmptyCart
	}
	return v
}

func (s *Session) Step() domain.CheckoutStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Leave discards the session. An in-flight submission is cancelled and its result, whatever
// it turns out to be, will not clear the cart.
func (s *Session) Leave() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return OutcomeGoToCatalog
	}
	s.closed = true
	if s.cancelSubmit != nil {
		s.cancelSubmit()
		s.seq.log.Warn("checkout left during order submission", "session_id", s.sessionID)
	}
	return OutcomeGoToCatalog
}

// Acknowledge closes a confirmed session and sends the shopper to order tracking.
func (s *Session) Acknowledge() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return OutcomeNone, ErrSessionClosed
	}
	if s.step != domain.CheckoutStepConfirmation {
		return OutcomeNone, ErrWrongStep
	}
	s.closed = true
	return OutcomeGoToOrderTracking, nil
}

// guardLocked rejects operations on closed sessions and, outside confirmation, on an empty cart.
func (s *Session) guardLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.step != domain.CheckoutStepConfirmation && s.cart.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}
