package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tradeportal_backend/platform/logger"
)

// handlerTimeout bounds each async handler so a stuck subscriber cannot
// leak goroutines forever.
const handlerTimeout = 30 * time.Second

// InMemoryBus dispatches events to subscribers within the same process.
// Subscription happens during composition, before traffic arrives; Publish
// and PublishSync are safe for concurrent use afterwards.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish delivers the event to each subscriber on its own goroutine.
// Handler errors and panics are logged and never reach the publisher.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.EventName()]
	b.mu.RUnlock()

	for _, h := range handlers {
		go func(h Handler) {
			defer func() {
				if rec := recover(); rec != nil {
					b.log.Error("event handler panicked",
						"event", event.EventName(),
						"panic", fmt.Sprintf("%v", rec),
					)
				}
			}()

			hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handlerTimeout)
			defer cancel()

			if err := h.Handle(hctx, event); err != nil {
				b.log.Error("event handler failed",
					"event", event.EventName(),
					"error", err.Error(),
				)
			}
		}(h)
	}
}

// PublishSync delivers the event to each subscriber in registration order
// and joins their errors.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.EventName()]
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", event.EventName(), err))
		}
	}
	return errors.Join(errs...)
}
