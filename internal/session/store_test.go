package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_pharmacy/internal/checkout"
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingSubmitter struct {
	started chan struct{}
}

func (b *blockingSubmitter) Submit(ctx context.Context, _ domain.OrderRequest) (*domain.OrderConfirmation, error) {
	b.started <- struct{}{}
	<-ctx.Done()
	return nil, ctx.Err()
}

type instantSubmitter struct{}

func (instantSubmitter) Submit(_ context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	return &domain.OrderConfirmation{Reference: "ORDSESSION1", Items: req.Lines, Payable: req.Payable}, nil
}

func product() domain.Product {
	return domain.Product{
		ID: "dolo-650", Name: "Dolo 650", Price: decimal.NewFromInt(28), MRP: decimal.NewFromInt(35), Discount: 20,
	}
}

func newTestStore(t *testing.T, sinks ...events.Sink) *Store {
	t.Helper()
	s := NewStore(Config{TTL: time.Minute, CleanupInterval: time.Hour}, nil, sinks...)
	t.Cleanup(s.Close)
	return s
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)

	sess := s.Create()
	require.NotEmpty(t, sess.ID)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, s.Len())

	_, err = s.Get("unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_GetOrCreate(t *testing.T) {
	s := newTestStore(t)

	first, created := s.GetOrCreate("")
	assert.True(t, created)

	again, created := s.GetOrCreate(first.ID)
	assert.False(t, created)
	assert.Same(t, first, again)

	other, created := s.GetOrCreate("stale-id")
	assert.True(t, created)
	assert.NotEqual(t, "stale-id", other.ID)
	assert.Equal(t, 2, s.Len())
}

func TestStore_SinksReceiveSessionEvents(t *testing.T) {
	var mu sync.Mutex
	var got []domain.Event
	sink := events.SinkFunc(func(e domain.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	s := newTestStore(t, sink)

	sess := s.Create()
	sess.Cart.Add(product())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventItemAdded, got[0].Type)
	assert.Equal(t, sess.ID, got[0].SessionID)
}

func TestStore_ExpiresIdleSessions(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	idle := s.Create()
	now = now.Add(45 * time.Second)
	active := s.Create()
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, s.expireSessions())

	_, err := s.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Get(active.ID)
	assert.NoError(t, err)
}

func TestStore_GetKeepsSessionAlive(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	sess := s.Create()
	now = now.Add(50 * time.Second)
	_, err := s.Get(sess.ID)
	require.NoError(t, err)
	now = now.Add(50 * time.Second)

	assert.Equal(t, 0, s.expireSessions())
}

func TestStore_ExpiryCancelsSubmissionAndKeepsCart(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	sub := &blockingSubmitter{started: make(chan struct{}, 1)}
	seq := checkout.NewSequencer(sub, domain.DefaultAddresses(), checkout.Config{SubmitTimeout: time.Minute, MaxAttempts: 1}, nil)

	sess := s.Create()
	sess.Cart.Add(product())
	cs, err := sess.BeginCheckout(seq)
	require.NoError(t, err)
	require.NoError(t, cs.ContinueToPayment())

	done := make(chan error, 1)
	go func() {
		_, err := cs.PlaceOrder(context.Background())
		done <- err
	}()
	<-sub.started

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, s.expireSessions())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, checkout.ErrSubmissionCancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("submission was not cancelled on expiry")
	}
	assert.Equal(t, 1, sess.Cart.TotalItems())
}

func TestSession_CheckoutLifecycle(t *testing.T) {
	s := newTestStore(t)
	seq := checkout.NewSequencer(instantSubmitter{}, domain.DefaultAddresses(), checkout.DefaultConfig(), nil)
	sess := s.Create()

	_, err := sess.BeginCheckout(seq)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	_, err = sess.Checkout()
	assert.ErrorIs(t, err, ErrNoCheckout)

	sess.Cart.Add(product())
	cs, err := sess.BeginCheckout(seq)
	require.NoError(t, err)

	again, err := sess.BeginCheckout(seq)
	require.NoError(t, err)
	assert.Same(t, cs, again, "re-entering keeps the live checkout")

	require.NoError(t, cs.ContinueToPayment())
	_, err = cs.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Cart.IsEmpty())

	outcome, err := sess.AcknowledgeCheckout()
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeGoToOrderTracking, outcome)

	_, err = sess.Checkout()
	assert.ErrorIs(t, err, ErrNoCheckout)
	_, err = sess.AcknowledgeCheckout()
	assert.ErrorIs(t, err, ErrNoCheckout)
}

func TestSession_ReenterAfterCartEmptied(t *testing.T) {
	s := newTestStore(t)
	seq := checkout.NewSequencer(instantSubmitter{}, domain.DefaultAddresses(), checkout.DefaultConfig(), nil)
	sess := s.Create()
	sess.Cart.Add(product())

	cs, err := sess.BeginCheckout(seq)
	require.NoError(t, err)
	sess.Cart.Clear()

	_, err = sess.BeginCheckout(seq)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.True(t, cs.Closed(), "the stale checkout is discarded")
	_, err = sess.Checkout()
	assert.ErrorIs(t, err, ErrNoCheckout)

	sess.Cart.Add(product())
	fresh, err := sess.BeginCheckout(seq)
	require.NoError(t, err)
	assert.NotSame(t, cs, fresh)
}

func TestSession_ReenterAfterConfirmationKeepsCheckout(t *testing.T) {
	s := newTestStore(t)
	seq := checkout.NewSequencer(instantSubmitter{}, domain.DefaultAddresses(), checkout.DefaultConfig(), nil)
	sess := s.Create()
	sess.Cart.Add(product())

	cs, err := sess.BeginCheckout(seq)
	require.NoError(t, err)
	require.NoError(t, cs.ContinueToPayment())
	_, err = cs.PlaceOrder(context.Background())
	require.NoError(t, err)
	require.True(t, sess.Cart.IsEmpty())

	again, err := sess.BeginCheckout(seq)
	require.NoError(t, err)
	assert.Same(t, cs, again)
	assert.Equal(t, domain.CheckoutStepConfirmation, again.Step())
}

func TestSession_LeaveCheckout(t *testing.T) {
	s := newTestStore(t)
	seq := checkout.NewSequencer(instantSubmitter{}, domain.DefaultAddresses(), checkout.DefaultConfig(), nil)
	sess := s.Create()
	sess.Cart.Add(product())

	cs, err := sess.BeginCheckout(seq)
	require.NoError(t, err)

	assert.Equal(t, checkout.OutcomeGoToCatalog, sess.LeaveCheckout())
	assert.True(t, cs.Closed())
	assert.False(t, sess.Cart.IsEmpty())
	assert.Equal(t, checkout.OutcomeGoToCatalog, sess.LeaveCheckout(), "leaving twice is harmless")

	fresh, err := sess.BeginCheckout(seq)
	require.NoError(t, err)
	assert.NotSame(t, cs, fresh)
	assert.Equal(t, domain.CheckoutStepAddress, fresh.Step())
}

func TestStore_CloseStopsLoop(t *testing.T) {
	s := NewStore(Config{TTL: time.Millisecond, CleanupInterval: 5 * time.Millisecond}, nil)
	s.Create()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	s.Close()
	s.Close()
}
