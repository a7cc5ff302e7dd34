package session

import (
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_pharmacy/internal/cart"
	"github.com/fjod/go_pharmacy/internal/checkout"
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/events"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoCheckout      = errors.New("no checkout in progress")
)

// Session is one shopper's application session: a cart, the bus its events go to and at
// most one live checkout.
type Session struct {
	ID        string
	Cart      *cart.Aggregate
	Bus       *events.Bus
	CreatedAt time.Time

	mu       sync.Mutex
	checkout *checkout.Session
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	bus := events.NewBus()
	return &Session{
		ID:        id,
		Cart:      cart.New(id, bus),
		Bus:       bus,
		CreatedAt: now,
		lastSeen:  now,
	}
}

// Checkout returns the live checkout session, or ErrNoCheckout.
func (s *Session) Checkout() (*checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout == nil || s.checkout.Closed() {
		s.checkout = nil
		return nil, ErrNoCheckout
	}
	return s.checkout, nil
}

// BeginCheckout enters checkout. Re-entering while a checkout is live returns that checkout,
// unless the cart has been emptied since: the stale checkout is discarded and the empty cart
// refused like on first entry. A confirmed or submitting checkout is always returned.
func (s *Session) BeginCheckout(seq *checkout.Sequencer) (*checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout != nil && !s.checkout.Closed() {
		cs := s.checkout
		if !s.Cart.IsEmpty() || cs.Submitting() || cs.Step() == domain.CheckoutStepConfirmation {
			return cs, nil
		}
		cs.Leave()
		s.checkout = nil
	}
	cs, err := seq.Begin(s.ID, s.Cart, s.Bus)
	if err != nil {
		s.checkout = nil
		return nil, err
	}
	s.checkout = cs
	return cs, nil
}

// LeaveCheckout discards the live checkout, cancelling any order submission.
func (s *Session) LeaveCheckout() checkout.Outcome {
	s.mu.Lock()
	cs := s.checkout
	s.checkout = nil
	s.mu.Unlock()
	if cs == nil {
		return checkout.OutcomeGoToCatalog
	}
	return cs.Leave()
}

func (s *Session) AcknowledgeCheckout() (checkout.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout == nil {
		return checkout.OutcomeNone, ErrNoCheckout
	}
	outcome, err := s.checkout.Acknowledge()
	if err != nil {
		return outcome, err
	}
	s.checkout = nil
	return outcome, nil
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}
