package checkout

import "github.com/fjod/go_pharmacy/internal/domain"

func (s *Session) SelectAddress(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardLocked(); err != nil {
		return err
	}
	if s.step != domain.CheckoutStepAddress {
		return ErrWrongStep
	}
	if _, ok := s.seq.findAddress(id); !ok {
		return ErrUnknownAddress
	}
	s.addressID = id
	return nil
}

func (s *Session) ContinueToPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardLocked(); err != nil {
		return err
	}
	if !domain.CanTransitionTo(s.step, domain.CheckoutStepPayment) {
		return ErrIllegalTransition
	}
	if _, ok := s.seq.findAddress(s.addressID); !ok {
		return ErrNoAddressSelected
	}
	s.step = domain.CheckoutStepPayment
	return nil
}

// BackToAddress is allowed at any time on the payment step except while an order is being
// submitted.
func (s *Session) BackToAddress() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.submitting {
		return ErrSubmissionInProgress
	}
	if !domain.CanTransitionTo(s.step, domain.CheckoutStepAddress) {
		return ErrIllegalTransition
	}
	s.step = domain.CheckoutStepAddress
	return nil
}
