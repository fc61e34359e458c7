// Package basket owns the order basket of one session: the ordered line items
// and their running total. It is the only place the basket is mutated.
package basket

import (
	"fmt"
	"sync"
	"time"

	"github.com/fjod/yume/internal/domain"
	"github.com/fjod/yume/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State of a basket. There is no submitting or failed state.
type State string

const (
	StateEmpty    State = "empty"
	StateNonEmpty State = "non_empty"
)

func (s State) String() string {
	return string(s)
}

// Snapshot is a consistent read of a basket. Version grows by one with every
// state change.
type Snapshot struct {
	Version     uint64
	State       State
	Items       []domain.LineItem
	TotalAmount decimal.Decimal
}

// Observer is called after every state change.
type Observer func(Snapshot)

// Basket is safe for concurrent use; all mutations are serialized.
type Basket struct {
	mu      sync.Mutex
	items   []domain.LineItem
	total   decimal.Decimal
	version uint64

	obsMu     sync.Mutex
	observers map[uint64]Observer
	nextObs   uint64

	now   func() time.Time
	newID func() string
}

type Option func(*Basket)

// WithClock overrides the time source used for AddedAt and PlacedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Basket) { b.now = now }
}

// WithIDGenerator overrides how line item and receipt ids are made.
func WithIDGenerator(newID func() string) Option {
	return func(b *Basket) { b.newID = newID }
}

// New returns an empty basket.
func New(opts ...Option) *Basket {
	b := &Basket{
		total:     decimal.Zero,
		observers: make(map[uint64]Observer),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add appends a line item built from item and the extras with a positive
// quantity. The same menu item added twice gives two line items.
func (b *Basket) Add(item domain.MenuItem, extras []domain.ExtraSelection) (domain.LineItem, error) {
	base, err := pricing.ParsePrice(item.Price)
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("item %s: %w", item.ID, err)
	}

	var chosen []domain.ExtraOption
	for _, e := range extras {
		if e.Quantity <= 0 {
			continue
		}
		unit, err := pricing.ParsePrice(e.UnitPrice)
		if err != nil {
			return domain.LineItem{}, fmt.Errorf("extra %s: %w", e.ExtraID, err)
		}
		chosen = append(chosen, domain.ExtraOption{
			ID:        e.ExtraID,
			Name:      e.Name,
			UnitPrice: unit,
			Quantity:  e.Quantity,
		})
	}

	b.mu.Lock()
	line := domain.LineItem{
		ID:         b.newID(),
		ItemID:     item.ID,
		Name:       item.Name,
		BasePrice:  base,
		Extras:     chosen,
		TotalPrice: pricing.LineTotal(base, chosen),
		AddedAt:    b.now(),
	}
	b.items = append(b.items, line)
	snap := b.commitLocked()
	b.mu.Unlock()

	b.notify(snap)
	return line.Clone(), nil
}

// Remove deletes the line item with the given id. It reports whether one was
// found; an unknown id leaves the basket untouched.
func (b *Basket) Remove(lineItemID string) bool {
	b.mu.Lock()
	idx := -1
	for i, it := range b.items {
		if it.ID == lineItemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return false
	}
	b.items = append(b.items[:idx:idx], b.items[idx+1:]...)
	snap := b.commitLocked()
	b.mu.Unlock()

	b.notify(snap)
	return true
}

// Clear empties the basket. Clearing an empty basket changes nothing.
func (b *Basket) Clear() {
	b.mu.Lock()
	if len(b.items) == 0 {
		b.mu.Unlock()
		return
	}
	b.items = nil
	snap := b.commitLocked()
	b.mu.Unlock()

	b.notify(snap)
}

// Checkout accepts the order locally and empties the basket. Nothing is
// submitted anywhere.
func (b *Basket) Checkout() (domain.Receipt, error) {
	b.mu.Lock()
	if len(b.items) == 0 {
		b.mu.Unlock()
		return domain.Receipt{}, ErrEmptyBasket
	}
	receipt := domain.Receipt{
		ID:          b.newID(),
		Items:       cloneItems(b.items),
		TotalAmount: b.total,
		PlacedAt:    b.now(),
	}
	b.items = nil
	snap := b.commitLocked()
	b.mu.Unlock()

	b.notify(snap)
	return receipt, nil
}

// LineItems returns a copy of the line items in insertion order.
func (b *Basket) LineItems() []domain.LineItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneItems(b.items)
}

func (b *Basket) TotalAmount() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

func (b *Basket) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return stateOf(b.items)
}

func (b *Basket) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Subscribe registers o and returns a function that removes it. Observers run
// on the goroutine that changed the basket, after its lock is released, so
// they may read the basket but should not block.
func (b *Basket) Subscribe(o Observer) (unsubscribe func()) {
	b.obsMu.Lock()
	id := b.nextObs
	b.nextObs++
	b.observers[id] = o
	b.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.obsMu.Lock()
			delete(b.observers, id)
			b.obsMu.Unlock()
		})
	}
}

// commitLocked recomputes the total, bumps the version and returns the new
// snapshot. b.mu must be held.
func (b *Basket) commitLocked() Snapshot {
	b.total = pricing.Sum(b.items)
	b.version++
	return b.snapshotLocked()
}

func (b *Basket) snapshotLocked() Snapshot {
	return Snapshot{
		Version:     b.version,
		State:       stateOf(b.items),
		Items:       cloneItems(b.items),
		TotalAmount: b.total,
	}
}

func (b *Basket) notify(s Snapshot) {
	b.obsMu.Lock()
	observers := make([]Observer, 0, len(b.observers))
	for _, o := range b.observers {
		observers = append(observers, o)
	}
	b.obsMu.Unlock()

	for _, o := range observers {
		o(s)
	}
}

func stateOf(items []domain.LineItem) State {
	if len(items) == 0 {
		return StateEmpty
	}
	return StateNonEmpty
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
