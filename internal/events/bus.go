package events

import (
	"sync"

	"github.com/fjod/go_pharmacy/internal/domain"
)

// Sink receives semantic events. Emit must not block the caller for long; slow consumers
// should buffer on their side.
type Sink interface {
	Emit(domain.Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(domain.Event)

func (f SinkFunc) Emit(e domain.Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(domain.Event) {})

// Bus fans events out to its subscribers in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Sink
	order  []int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]Sink)}
}

// Subscribe registers s and returns a function that removes it again.
func (b *Bus) Subscribe(s Sink) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = s
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (b *Bus) Emit(e domain.Event) {
	b.mu.RLock()
	targets := make([]Sink, 0, len(b.order))
	for _, id := range b.order {
		targets = append(targets, b.subs[id])
	}
	b.mu.RUnlock()

	for _, s := range targets {
		s.Emit(e)
	}
}

// Len is the number of live subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
