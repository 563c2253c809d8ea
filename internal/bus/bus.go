// Package bus is the in-process publish/subscribe hub for domain events.
package bus

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mkline/tasknest/pkg/models"
)

// Handler receives a published event. A handler error fails the whole
// publish call.
type Handler func(ctx context.Context, e models.Event) error

// Subscription identifies one registered handler.
type Subscription struct {
	eventType string
	id        int
}

// Bus fans events out to the handlers registered for their type.
// Delivery is fire-and-forget: there is no persistence or retry, and
// handlers registered after a publish never see that event.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[string]map[int]Handler)}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[int]Handler)
	}
	b.nextID++
	b.handlers[eventType][b.nextID] = h
	return &Subscription{eventType: eventType, id: b.nextID}
}

// Unsubscribe removes a previously registered handler. Unknown
// subscriptions are ignored.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if hs, ok := b.handlers[sub.eventType]; ok {
		delete(hs, sub.id)
	}
}

// Publish invokes every handler registered for the event's type
// concurrently and waits for all of them. The first handler error is
// returned; handlers are not isolated from each other. With no handlers
// registered, Publish is a no-op.
func (b *Bus) Publish(ctx context.Context, e models.Event) error {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[e.EventType()]))
	for _, h := range b.handlers[e.EventType()] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	if len(hs) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, h := range hs {
		g.Go(func() error {
			return h(ctx, e)
		})
	}
	return g.Wait()
}
