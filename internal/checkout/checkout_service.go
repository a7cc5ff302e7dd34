package checkout

import (
	"context"
	"time"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/events"
	"github.com/fjod/go_pharmacy/internal/logger"
	"github.com/shopspring/decimal"
)

// Cart is the part of the cart aggregate the checkout flow reads and settles.
type Cart interface {
	Lines() []domain.CartLine
	TotalPrice() decimal.Decimal
	IsEmpty() bool
	RemoveOrdered(ordered []domain.CartLine)
}

// OrderSubmitter places an order with the external order service.
type OrderSubmitter interface {
	Submit(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error)
}

type Config struct {
	// SubmitTimeout bounds a single submission attempt.
	SubmitTimeout time.Duration
	// MaxAttempts is the number of attempts for retryable failures, including the first.
	MaxAttempts int
	// RetryBackoff is multiplied by the attempt number between attempts.
	RetryBackoff time.Duration
}

func DefaultConfig() Config {
	return Config{
		SubmitTimeout: 8 * time.Second,
		MaxAttempts:   3,
		RetryBackoff:  300 * time.Millisecond,
	}
}

// Sequencer holds what every checkout session shares: the submission service, the address
// book and the retry policy. Sessions are started with Begin.
type Sequencer struct {
	submitter OrderSubmitter
	addresses []domain.Address
	cfg       Config
	log       *logger.Logger
	now       func() time.Time
}

func NewSequencer(submitter OrderSubmitter, addresses []domain.Address, cfg Config, log *logger.Logger) *Sequencer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultConfig().SubmitTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Sequencer{
		submitter: submitter,
		addresses: addresses,
		cfg:       cfg,
		log:       log.With("component", "checkout"),
		now:       time.Now,
	}
}

func (q *Sequencer) Addresses() []domain.Address {
	out := make([]domain.Address, len(q.addresses))
	copy(out, q.addresses)
	return out
}

// Begin enters checkout for cart. An empty cart never gets a session: the caller receives
// ErrEmptyCart and should show the empty-cart state instead of the stepper.
func (q *Sequencer) Begin(sessionID string, cart Cart, sink events.Sink) (*Session, error) {
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if sink == nil {
		sink = events.Discard
	}
	s := &Session{
		seq:       q,
		sessionID: sessionID,
		cart:      cart,
		sink:      sink,
		step:      domain.CheckoutStepAddress,
		payment:   domain.DefaultPaymentMethod,
	}
	if len(q.addresses) > 0 {
		s.addressID = q.addresses[0].ID
	}
	q.log.Debug("checkout started", "session_id", sessionID)
	return s, nil
}

func (q *Sequencer) findAddress(id string) (domain.Address, bool) {
	for _, a := range q.addresses {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Address{}, false
}
