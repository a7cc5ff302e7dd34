package events

import (
	"testing"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBus_FanOutInOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(SinkFunc(func(e domain.Event) { got = append(got, "a:"+string(e.Type)) }))
	bus.Subscribe(SinkFunc(func(e domain.Event) { got = append(got, "b:"+string(e.Type)) }))

	bus.Emit(domain.Event{Type: domain.EventItemAdded})

	assert.Equal(t, []string{"a:ItemAdded", "b:ItemAdded"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsubscribe := bus.Subscribe(SinkFunc(func(domain.Event) { calls++ }))

	bus.Emit(domain.Event{Type: domain.EventItemRemoved})
	unsubscribe()
	unsubscribe() // second call is harmless
	bus.Emit(domain.Event{Type: domain.EventItemRemoved})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Len())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Emit(domain.Event{Type: domain.EventOrderPlaced}) })
}
