package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_pharmacy/internal/domain"
)

// MockSubmitter implements OrderSubmitter for testing. Errs is consumed one entry per call;
// a nil entry or an exhausted list means success. When Block is set, Submit signals Started
// and waits for Release or the context.
type MockSubmitter struct {
	mu       sync.Mutex
	Errs     []error
	Calls    int
	Requests []domain.OrderRequest

	Block   bool
	Started chan struct{}
	Release chan struct{}
}

func NewMockSubmitter(errs ...error) *MockSubmitter {
	return &MockSubmitter{
		Errs:    errs,
		Started: make(chan struct{}, 16),
		Release: make(chan struct{}),
	}
}

func (m *MockSubmitter) Submit(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	m.mu.Lock()
	i := m.Calls
	m.Calls++
	m.Requests = append(m.Requests, req)
	var err error
	if i < len(m.Errs) {
		err = m.Errs[i]
	}
	block := m.Block
	m.mu.Unlock()

	if block {
		m.Started <- struct{}{}
		select {
		case <-m.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &domain.OrderConfirmation{
		Reference:      "ORDTEST0001",
		AddressSummary: req.Address.Summary(),
		PaymentLabel:   req.PaymentMethod.Label(),
		Items:          req.Lines,
		Subtotal:       req.Subtotal,
		DeliveryFee:    req.DeliveryFee,
		Payable:        req.Payable,
	}, nil
}

func (m *MockSubmitter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingSink) Emit(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) all() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}
