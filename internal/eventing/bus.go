package eventing

import (
	"context"
	"errors"
	"reflect"
	"sync"
)

// ErrNilEvent is returned when a nil event is published.
var ErrNilEvent = errors.New("eventing: nil event")

type handlerFunc func(ctx context.Context, event any) error

// InMemoryBus is a synchronous in-process event bus. Handlers are keyed by the
// exact dynamic type of the event, so T and *T are distinct.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]handlerFunc
}

// NewInMemoryBus constructs a new in-memory bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[reflect.Type][]handlerFunc),
	}
}

// Publish runs every handler of the event's type and returns the first error.
// An event nobody subscribed to is dropped.
func (b *InMemoryBus) Publish(ctx context.Context, event any) error {
	if event == nil {
		return ErrNilEvent
	}

	b.mu.RLock()
	handlers := append([]handlerFunc(nil), b.handlers[reflect.TypeOf(event)]...)
	b.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SubscribeTyped registers a handler for events of type T.
func SubscribeTyped[T any](bus *InMemoryBus, handler func(ctx context.Context, event T) error) {
	if bus == nil || handler == nil {
		return
	}
	key := reflect.TypeFor[T]()

	bus.mu.Lock()
	bus.handlers[key] = append(bus.handlers[key], func(ctx context.Context, event any) error {
		return handler(ctx, event.(T))
	})
	bus.mu.Unlock()
}
