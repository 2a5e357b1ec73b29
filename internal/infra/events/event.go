package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
)

// Event is the envelope carried by every bus implementation.
type Event struct {
	Type       string          `json:"type"`
	UserID     int64           `json:"user_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Handler receives delivered events.
type Handler func(ctx context.Context, event Event)

// Bus publishes events and delivers them to a single handler.
type Bus interface {
	healthdata.EventPublisher
	SetHandler(handler Handler)
	Close() error
}

// NewEvent encodes payload into an envelope.
func NewEvent(eventType string, userID int64, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Event{
		Type:       eventType,
		UserID:     userID,
		Payload:    raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}

func decodeEvent(raw []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return Event{}, err
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("event type missing")
	}
	return event, nil
}
