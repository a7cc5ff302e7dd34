package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/logger"
	"github.com/sony/gobreaker/v2"
)

type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
}

// Breaker fails fast while the order service keeps failing. Rejections and cancellations
// are answers, not outages, and do not count against the service.
type Breaker struct {
	next Submitter
	cb   *gobreaker.CircuitBreaker[*domain.OrderConfirmation]
}

func NewBreaker(next Submitter, s BreakerSettings, log *logger.Logger) *Breaker {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "orders-breaker")

	cb := gobreaker.NewCircuitBreaker[*domain.OrderConfirmation](gobreaker.Settings{
		Name:        "order-submission",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRejected) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Submit(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	conf, err := b.cb.Execute(func() (*domain.OrderConfirmation, error) {
		return b.next.Submit(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return conf, err
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
