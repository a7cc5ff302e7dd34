package orders

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/fjod/go_pharmacy/internal/domain"
)

type Decision struct {
	Accepted  bool
	Transient bool
	Reason    string
}

type Decider interface {
	Decide() Decision
}

// RandomDecider fails FailurePercent out of every 100 orders.
type RandomDecider struct {
	FailurePercent int
}

func (r RandomDecider) Decide() Decision {
	return calcDecision(rand.Intn(100), r.FailurePercent)
}

var refusals = []Decision{
	{Transient: true, Reason: "order service busy"},
	{Transient: false, Reason: "payment declined by bank"},
	{Transient: true, Reason: "pharmacy partner timeout"},
	{Transient: false, Reason: "prescription verification failed"},
}

func calcDecision(roll, failurePercent int) Decision {
	if roll >= failurePercent {
		return Decision{Accepted: true}
	}
	return refusals[roll%len(refusals)]
}

const (
	DefaultIdempotencyTTL     = time.Hour
	DefaultMaxIdempotencyKeys = 10000
)

type placedOrder struct {
	conf    *domain.OrderConfirmation
	expires time.Time
}

// Simulated stands in for the external order service: it waits for Latency, asks the Decider
// whether to accept, and builds the confirmation. Retries carrying the same idempotency key
// get the original confirmation back while the key is remembered: for keyTTL, and only for
// the newest maxKeys keys.
type Simulated struct {
	latency time.Duration
	decider Decider
	now     func() time.Time
	keyTTL  time.Duration
	maxKeys int

	mu     sync.Mutex
	placed map[string]placedOrder // idempotency key -> confirmation
	keys   []string               // insertion order, oldest first
}

func NewSimulated(latency time.Duration, decider Decider) *Simulated {
	return &Simulated{
		latency: latency,
		decider: decider,
		now:     time.Now,
		keyTTL:  DefaultIdempotencyTTL,
		maxKeys: DefaultMaxIdempotencyKeys,
		placed:  make(map[string]placedOrder),
	}
}

func (s *Simulated) Submit(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: order has no lines", ErrRejected)
	}

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.forgetLocked(s.now())
	if req.IdempotencyKey != "" {
		if p, ok := s.placed[req.IdempotencyKey]; ok {
			return p.conf, nil
		}
	}

	d := s.decider.Decide()
	if !d.Accepted {
		if d.Transient {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, d.Reason)
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, d.Reason)
	}

	placedAt := s.now()
	conf := &domain.OrderConfirmation{
		Reference:      NewOrderReference(),
		AddressSummary: req.Address.Summary(),
		PaymentLabel:   req.PaymentMethod.Label(),
		Items:          req.Lines,
		Subtotal:       req.Subtotal,
		DeliveryFee:    req.DeliveryFee,
		Payable:        req.Payable,
		EstimatedDelivery: domain.DeliveryWindow{
			From: placedAt.Add(24 * time.Hour),
			To:   placedAt.Add(72 * time.Hour),
		},
		PlacedAt: placedAt,
	}
	if req.IdempotencyKey != "" {
		s.placed[req.IdempotencyKey] = placedOrder{conf: conf, expires: placedAt.Add(s.keyTTL)}
		s.keys = append(s.keys, req.IdempotencyKey)
		s.forgetLocked(placedAt)
	}
	return conf, nil
}

// forgetLocked drops expired keys and, past maxKeys, the oldest ones. Keys are appended
// in placement order with a fixed TTL, so expired keys are always at the front.
func (s *Simulated) forgetLocked(now time.Time) {
	drop := 0
	for drop < len(s.keys) {
		p := s.placed[s.keys[drop]]
		if len(s.keys)-drop <= s.maxKeys && now.Before(p.expires) {
			break
		}
		delete(s.placed, s.keys[drop])
		drop++
	}
	if drop > 0 {
		s.keys = append([]string(nil), s.keys[drop:]...)
	}
}

// Remembered reports how many idempotency keys are currently held.
func (s *Simulated) Remembered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.placed)
}
