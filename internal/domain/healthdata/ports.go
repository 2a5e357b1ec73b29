package healthdata

import (
	"context"
	"io"
)

// Repository persists upload records.
type Repository interface {
	Save(ctx context.Context, record Record) error
	// ListByUser returns at most limit records, newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]Record, error)
	Get(ctx context.Context, userID int64, id string) (Record, bool, error)
}

// ObjectStorage keeps the raw upload bodies.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// EventPublisher fans upload notifications out to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, userID int64, payload any) error
}
