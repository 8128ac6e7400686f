// Package eventbus provides the in-process event bus implementation.
package eventbus

import (
	"context"
	"sync"

	"github.com/acquirex/reconcile/pkg/domain"
)

// MemoryBus dispatches events synchronously to in-process subscribers.
type MemoryBus struct {
	handlers map[string][]func(context.Context, domain.Event)
	mu       sync.RWMutex
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]func(context.Context, domain.Event))}
}

// Publish delivers the event to every handler subscribed to its type.
func (b *MemoryBus) Publish(ctx context.Context, event domain.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, handler := range b.handlers[event.Type()] {
		handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for one event type.
func (b *MemoryBus) Subscribe(eventType string, handler func(context.Context, domain.Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
