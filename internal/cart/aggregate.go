package cart

import (
	"sync"
	"time"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/events"
	"github.com/shopspring/decimal"
)

// Summary is a consistent read of the cart: the lines and every derived value computed
// from that same set of lines.
type Summary struct {
	Lines      []domain.CartLine `json:"lines"`
	TotalItems int               `json:"total_items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Savings    decimal.Decimal   `json:"savings"`
}

// Observer is called with a fresh Summary after every mutation that changed the cart.
// Observers must not mutate the cart they observe.
type Observer func(Summary)

// Aggregate owns the cart lines of one application session. Derived values are recomputed
// from the lines on every call; nothing is maintained incrementally.
type Aggregate struct {
	mu    sync.RWMutex
	lines []domain.CartLine
	index map[string]int // product id -> position in lines

	// notify serializes mutation+notification so observers see changes in mutation order.
	notify    sync.Mutex
	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int

	sessionID string
	sink      events.Sink
	now       func() time.Time
}

func New(sessionID string, sink events.Sink) *Aggregate {
	if sink == nil {
		sink = events.Discard
	}
	return &Aggregate{
		index:     make(map[string]int),
		observers: make(map[int]Observer),
		sessionID: sessionID,
		sink:      sink,
		now:       time.Now,
	}
}

// Add increments the line for product by one, inserting it with quantity 1 when absent.
func (a *Aggregate) Add(product domain.Product) {
	a.mutate(func() *domain.Event {
		qty := 1
		if i, ok := a.index[product.ID]; ok {
			a.lines[i].Quantity++
			qty = a.lines[i].Quantity
		} else {
			a.index[product.ID] = len(a.lines)
			a.lines = append(a.lines, domain.CartLine{Product: product, Quantity: 1})
		}
		return &domain.Event{Type: domain.EventItemAdded, ProductID: product.ID, Quantity: qty}
	})
}

// Remove deletes the line for id. Removing an absent id is a no-op.
func (a *Aggregate) Remove(id string) {
	a.mutate(func() *domain.Event {
		if !a.removeLocked(id) {
			return nil
		}
		return &domain.Event{Type: domain.EventItemRemoved, ProductID: id}
	})
}

// UpdateQuantity sets the quantity of the line for id. A quantity of zero or less removes
// the line. Unknown ids are ignored.
func (a *Aggregate) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		a.Remove(id)
		return
	}
	a.mutate(func() *domain.Event {
		i, ok := a.index[id]
		if !ok || a.lines[i].Quantity == quantity {
			return nil
		}
		a.lines[i].Quantity = quantity
		return &domain.Event{Type: domain.EventQuantityChanged, ProductID: id, Quantity: quantity}
	})
}

// Clear empties the cart.
func (a *Aggregate) Clear() {
	a.mutate(func() *domain.Event {
		if len(a.lines) == 0 {
			return nil
		}
		a.lines = nil
		a.index = make(map[string]int)
		return &domain.Event{Type: domain.EventCartCleared}
	})
}

// RemoveOrdered takes the quantities of an order out of the cart. Whatever was added after
// the order was taken stays in the cart; lines the shopper removed meanwhile are skipped.
func (a *Aggregate) RemoveOrdered(ordered []domain.CartLine) {
	a.mutateAll(func() []domain.Event {
		var evs []domain.Event
		for _, o := range ordered {
			i, ok := a.index[o.Product.ID]
			if !ok {
				continue
			}
			if left := a.lines[i].Quantity - o.Quantity; left > 0 {
				a.lines[i].Quantity = left
				evs = append(evs, domain.Event{Type: domain.EventQuantityChanged, ProductID: o.Product.ID, Quantity: left})
				continue
			}
			a.removeLocked(o.Product.ID)
			evs = append(evs, domain.Event{Type: domain.EventItemRemoved, ProductID: o.Product.ID})
		}
		if len(evs) > 0 && len(a.lines) == 0 {
			return []domain.Event{{Type: domain.EventCartCleared}}
		}
		return evs
	})
}

func (a *Aggregate) TotalItems() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return totalItems(a.lines)
}

func (a *Aggregate) TotalPrice() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return totalPrice(a.lines)
}

func (a *Aggregate) Savings() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return savings(a.lines)
}

func (a *Aggregate) IsInCart(id string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.index[id]
	return ok
}

// Line returns a copy of the line for id.
func (a *Aggregate) Line(id string) (domain.CartLine, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	i, ok := a.index[id]
	if !ok {
		return domain.CartLine{}, false
	}
	return a.lines[i], true
}

// Lines returns a copy of the lines in insertion order.
func (a *Aggregate) Lines() []domain.CartLine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copyLines(a.lines)
}

func (a *Aggregate) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.lines)
}

func (a *Aggregate) IsEmpty() bool {
	return a.Len() == 0
}

func (a *Aggregate) Summary() Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return summarize(a.lines)
}

// Subscribe registers an observer and returns a function that removes it.
func (a *Aggregate) Subscribe(o Observer) (unsubscribe func()) {
	a.obsMu.Lock()
	id := a.nextObs
	a.nextObs++
	a.observers[id] = o
	a.obsMu.Unlock()

	return func() {
		a.obsMu.Lock()
		delete(a.observers, id)
		a.obsMu.Unlock()
	}
}

// mutate runs fn under the write lock. fn returns the event describing the change, or nil
// when nothing changed; observers and the sink are only told about real changes.
func (a *Aggregate) mutate(fn func() *domain.Event) {
	a.mutateAll(func() []domain.Event {
		if ev := fn(); ev != nil {
			return []domain.Event{*ev}
		}
		return nil
	})
}

// mutateAll is mutate for changes described by several events. Observers are notified once.
func (a *Aggregate) mutateAll(fn func() []domain.Event) {
	a.notify.Lock()
	defer a.notify.Unlock()

	a.mu.Lock()
	evs := fn()
	var snap Summary
	if len(evs) > 0 {
		snap = summarize(a.lines)
	}
	a.mu.Unlock()

	if len(evs) == 0 {
		return
	}
	at := a.now()
	for _, ev := range evs {
		ev.SessionID = a.sessionID
		ev.At = at
		a.sink.Emit(ev)
	}

	a.obsMu.Lock()
	observers := make([]Observer, 0, len(a.observers))
	for _, o := range a.observers {
		observers = append(observers, o)
	}
	a.obsMu.Unlock()
	for _, o := range observers {
		o(snap)
	}
}

func (a *Aggregate) removeLocked(id string) bool {
	i, ok := a.index[id]
	if !ok {
		return false
	}
	a.lines = append(a.lines[:i], a.lines[i+1:]...)
	delete(a.index, id)
	for j := i; j < len(a.lines); j++ {
		a.index[a.lines[j].Product.ID] = j
	}
	return true
}
