package events

import "sync"

// Handler consumes one event payload. Handlers that cannot use a payload
// (wrong type, missing ids) are expected to drop it quietly rather than
// panic; the bus makes no attempt to recover.
type Handler func(payload any)

// Bus is a synchronous in-process publish/subscribe channel. Delivery runs
// on the publisher's goroutine, in subscription order, to every handler
// registered at publish time. There is no queue, no retry, and no
// deduplication: a publish with no registered handler is simply lost, and
// publishing the same logical event twice delivers it twice.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Type][]subscription
}

type subscription struct {
	id int
	fn Handler
}

// NewBus creates a new Bus
func NewBus() *Bus {
	return &Bus{subs: make(map[Type][]subscription)}
}

// Subscribe registers a handler for one event type and returns the
// capability to deregister it. Multiple handlers may register for the same
// type; they fire in registration order.
func (b *Bus) Subscribe(t Type, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[t] = append(b.subs[t], subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[t]
		for i, sub := range list {
			if sub.id == id {
				b.subs[t] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload synchronously to every handler currently
// registered for t. A delivery already dispatched cannot be canceled by a
// concurrent unsubscribe.
func (b *Bus) Publish(t Type, payload any) {
	b.mu.Lock()
	list := make([]subscription, len(b.subs[t]))
	copy(list, b.subs[t])
	b.mu.Unlock()

	for _, sub := range list {
		sub.fn(payload)
	}
}
