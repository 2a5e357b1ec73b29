package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyBus broadcasts events over a Valkey pub/sub channel. Every subscribed
// process receives every event; nothing is kept for processes that are down.
type ValkeyBus struct {
	client       valkey.Client
	channel      string
	logger       *slog.Logger
	retryBackoff time.Duration

	mu       sync.RWMutex
	handler  Handler
	started  bool
	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}
}

// NewValkeyBus constructs a Valkey-backed bus.
func NewValkeyBus(client valkey.Client, channel string, logger *slog.Logger) *ValkeyBus {
	if channel == "" {
		channel = "twin:events"
	}
	return &ValkeyBus{
		client:       client,
		channel:      channel,
		logger:       logger.With("component", "events.valkey", "channel", channel),
		retryBackoff: time.Second,
		done:         make(chan struct{}),
	}
}

// SetHandler installs the handler and subscribes on first use.
func (b *ValkeyBus) SetHandler(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
	if handler == nil || b.started {
		return
	}
	b.started = true
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.subscribe(ctx)
}

// Publish sends the event to every current subscriber.
func (b *ValkeyBus) Publish(ctx context.Context, eventType string, userID int64, payload any) error {
	event, err := NewEvent(eventType, userID, payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(event)
	if err != nil {
		return err
	}
	cmd := b.client.B().Publish().Channel(b.channel).Message(string(encoded)).Build()
	return b.client.Do(ctx, cmd).Error()
}

// Close unsubscribes. The client is owned by the caller.
func (b *ValkeyBus) Close() error {
	b.stopOnce.Do(func() {
		b.mu.RLock()
		started, cancel := b.started, b.cancel
		b.mu.RUnlock()
		if started {
			cancel()
			<-b.done
		}
	})
	return nil
}

// subscribe holds the subscription open and resubscribes after connection errors.
func (b *ValkeyBus) subscribe(ctx context.Context) {
	defer close(b.done)
	for {
		cmd := b.client.B().Subscribe().Channel(b.channel).Build()
		err := b.client.Receive(ctx, cmd, func(msg valkey.PubSubMessage) {
			b.deliver(ctx, msg.Message)
		})
		if ctx.Err() != nil {
			return
		}
		b.logger.Warn("valkey subscription dropped, resubscribing", "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(b.retryBackoff):
		}
	}
}

func (b *ValkeyBus) deliver(ctx context.Context, raw string) {
	event, err := decodeEvent([]byte(raw))
	if err != nil {
		b.logger.Warn("valkey event unmarshal failed", "error", err)
		return
	}
	b.mu.RLock()
	handler := b.handler
	b.mu.RUnlock()
	if handler != nil {
		handler(ctx, event)
	}
}

var _ Bus = (*ValkeyBus)(nil)
