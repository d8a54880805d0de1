package daemon

import (
	"sync"

	"github.com/1broseidon/monofocus/internal/gateway"
)

// Broker fans push events out to IPC subscribers. Observers receive every
// event but do not act on toggle-shield.
type Broker struct {
	mu   sync.Mutex
	subs map[chan gateway.Event]bool // value: observer
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[chan gateway.Event]bool),
	}
}

// Subscribe registers a new subscriber and returns its channel along with a
// function that unregisters it.
func (b *Broker) Subscribe(observer bool) (<-chan gateway.Event, func()) {
	ch := make(chan gateway.Event, 16)
	b.mu.Lock()
	b.subs[ch] = observer
	b.mu.Unlock()
	return ch, func() { b.unsubscribe(ch) }
}

func (b *Broker) unsubscribe(ch chan gateway.Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers ev to all subscribers. Lagging subscribers miss the event;
// the UI's periodic refresh catches them up.
func (b *Broker) Publish(ev gateway.Event) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	b.mu.Unlock()
}

// Count returns the number of subscribers.
func (b *Broker) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Controllers returns the number of subscribers that are not observers.
func (b *Broker) Controllers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, observer := range b.subs {
		if !observer {
			n++
		}
	}
	return n
}
