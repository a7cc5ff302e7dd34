package checkout

import "github.com/fjod/go_pharmacy/internal/domain"

func (s *Session) SelectPayment(method domain.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardLocked(); err != nil {
		return err
	}
	if s.submitting {
		return ErrSubmissionInProgress
	}
	if s.step != domain.CheckoutStepPayment {
		return ErrWrongStep
	}
	if !method.Valid() {
		return domain.ErrUnknownPaymentMethod
	}
	s.payment = method
	return nil
}
