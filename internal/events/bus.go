package events

import "sync"

// Handler receives a published event. Handlers run on the publisher's
// goroutine; anything slow should hand off to its own goroutine.
type Handler func(Event)

// Bus is a typed publish/subscribe channel over the closed set of event
// kinds above. Subscribers are registered per kind, so every consumer of a
// given event is statically discoverable from its call sites.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Kind]map[int]Handler
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[Kind]map[int]Handler),
	}
}

// Subscribe registers a handler for one event kind and returns a function
// that removes the subscription. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(kind Kind, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[kind] == nil {
		b.subs[kind] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.subs[kind][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[kind], id)
	}
}

// Publish delivers the event to every handler subscribed to its kind.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[event.Kind()]))
	for _, h := range b.subs[event.Kind()] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
