package events

import (
	"context"
	"sync"
)

// InProcessBus calls the handler on a new goroutine for each publish.
type InProcessBus struct {
	mu      sync.RWMutex
	handler Handler
	wg      sync.WaitGroup
}

// NewInProcessBus constructs the bus.
func NewInProcessBus() *InProcessBus {
	return &InProcessBus{}
}

// SetHandler replaces the handler used for delivery.
func (b *InProcessBus) SetHandler(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
}

// Publish dispatches asynchronously; the request context's cancellation is not inherited.
func (b *InProcessBus) Publish(ctx context.Context, eventType string, userID int64, payload any) error {
	event, err := NewEvent(eventType, userID, payload)
	if err != nil {
		return err
	}
	b.mu.RLock()
	handler := b.handler
	b.mu.RUnlock()
	if handler == nil {
		return nil
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		handler(context.WithoutCancel(ctx), event)
	}()
	return nil
}

// Close waits for in-flight deliveries.
func (b *InProcessBus) Close() error {
	b.wg.Wait()
	return nil
}

var _ Bus = (*InProcessBus)(nil)
