package events

import (
	"sync"
)

// Broker fans events out to buffered subscriber channels.
type Broker struct {
	subscribers map[Type][]chan Event
	mu          sync.RWMutex
	bufferSize  int
	closed      bool
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Type][]chan Event),
		bufferSize:  64,
	}
}

// Subscribe creates a subscription to specific event types.
// With no types the subscription receives everything.
func (b *Broker) Subscribe(types ...Type) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	if b.closed {
		close(ch)
		return ch
	}

	if len(types) == 0 {
		types = []Type{wildcard}
	}
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], ch)
	}
	return ch
}

// Unsubscribe removes a subscription from every type it was registered for
// and closes its channel.
func (b *Broker) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found chan Event
	for t, subs := range b.subscribers {
		for i, sub := range subs {
			if sub == ch {
				found = sub
				b.subscribers[t] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subscribers[t]) == 0 {
			delete(b.subscribers, t)
		}
	}
	if found != nil {
		close(found)
	}
}

// Publish delivers event to matching subscribers. Full channels drop the event.
func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	deliver := func(subs []chan Event) {
		for _, ch := range subs {
			select {
			case ch <- event:
			default:
			}
		}
	}
	deliver(b.subscribers[event.Type])
	deliver(b.subscribers[wildcard])
}

// Close closes every subscription. Later subscriptions are returned closed.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[chan Event]bool)
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			if !seen[ch] {
				seen[ch] = true
				close(ch)
			}
		}
	}
	b.subscribers = make(map[Type][]chan Event)
	b.closed = true
}
