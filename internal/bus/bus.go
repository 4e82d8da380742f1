package bus

import (
	"strings"
	"sync"
)

// Bus is an in-process publish/subscribe event bus with namespace filtering.
// Views subscribe to it to re-render when the chat store changes.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]*subscription
	next int
}

type subscription struct {
	namespace string
	ch        chan Event
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		subs: make(map[int]*subscription),
	}
}

// Publish sends an event to all subscribers whose namespace is a prefix of
// event.Kind. A nil bus drops everything.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if strings.HasPrefix(evt.Kind, sub.namespace) {
			select {
			case sub.ch <- evt:
			default:
				// Subscriber is full; drop rather than block the publisher.
			}
		}
	}
}

// Subscribe returns a channel receiving events whose kind starts with any of
// the given namespaces, and an unsubscribe function. An empty namespace list
// subscribes to everything.
func (b *Bus) Subscribe(bufSize int, namespaces ...string) (<-chan Event, func()) {
	if len(namespaces) == 0 {
		namespaces = []string{""}
	}
	ch := make(chan Event, bufSize)

	b.mu.Lock()
	ids := make([]int, 0, len(namespaces))
	for _, ns := range namespaces {
		id := b.next
		b.next++
		b.subs[id] = &subscription{namespace: ns, ch: ch}
		ids = append(ids, id)
	}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			for _, id := range ids {
				delete(b.subs, id)
			}
			b.mu.Unlock()
		})
	}
}
