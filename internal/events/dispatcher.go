package events

import (
	"context"
	"sync"

	"pulse-chat/internal/domain"
)

// Consumer receives every dispatched domain event and filters for itself.
type Consumer interface {
	Handle(ctx context.Context, event domain.Event)
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc func(ctx context.Context, event domain.Event)

func (f ConsumerFunc) Handle(ctx context.Context, event domain.Event) {
	f(ctx, event)
}

// Dispatcher is the in-process domain event bus. Use cases dispatch the
// events drained from an aggregate strictly after a successful commit, so
// consumers never observe state that failed to persist.
type Dispatcher struct {
	mu        sync.RWMutex
	consumers []Consumer
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers a consumer. Registration happens at startup; consumers
// are never removed.
func (d *Dispatcher) Subscribe(c Consumer) {
	d.mu.Lock()
	d.consumers = append(d.consumers, c)
	d.mu.Unlock()
}

// Dispatch delivers each event to every consumer, in recording order.
// Consumers own their failure handling; a consumer error never propagates
// back to the command that produced the event.
func (d *Dispatcher) Dispatch(ctx context.Context, evts ...domain.Event) {
	d.mu.RLock()
	consumers := make([]Consumer, len(d.consumers))
	copy(consumers, d.consumers)
	d.mu.RUnlock()

	for _, evt := range evts {
		for _, c := range consumers {
			c.Handle(ctx, evt)
		}
	}
}
