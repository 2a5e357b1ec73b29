package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// KafkaConfig selects the cluster and topic. GroupID is a prefix: each bus
// joins GroupID-InstanceID so every replica reads the whole topic.
type KafkaConfig struct {
	Brokers    []string
	Topic      string
	GroupID    string
	InstanceID string
}

// KafkaBus writes events to a topic and consumes them with a consumer group
// private to this process.
type KafkaBus struct {
	cfg    KafkaConfig
	writer *kafka.Writer
	logger *slog.Logger

	mu      sync.RWMutex
	handler Handler
	reader  *kafka.Reader
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewKafkaBus constructs the writer eagerly; the reader starts with SetHandler.
func NewKafkaBus(cfg KafkaConfig, logger *slog.Logger) (*KafkaBus, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.Topic == "" {
		cfg.Topic = "twin.events"
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "twin-dashboard"
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = newInstanceID()
	}
	return &KafkaBus{
		cfg: cfg,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		logger: logger.With("component", "events.kafka", "topic", cfg.Topic, "group", cfg.GroupID+"-"+cfg.InstanceID),
	}, nil
}

// ConsumerGroup is the group this bus reads with.
func (b *KafkaBus) ConsumerGroup() string {
	return b.cfg.GroupID + "-" + b.cfg.InstanceID
}

func newInstanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "twin"
	}
	return host + "-" + uuid.NewString()[:8]
}

// Publish writes one message keyed by user so a user's events stay ordered.
func (b *KafkaBus) Publish(ctx context.Context, eventType string, userID int64, payload any) error {
	event, err := NewEvent(eventType, userID, payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(userID, 10)),
		Value: encoded,
		Time:  event.OccurredAt,
	})
}

// SetHandler installs the handler and starts the reader on first use.
func (b *KafkaBus) SetHandler(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
	if handler == nil || b.reader != nil {
		return
	}
	// A fresh group starts at the tail; replaying old uploads to live
	// dashboards would be noise.
	b.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.cfg.Brokers,
		GroupID:     b.ConsumerGroup(),
		Topic:       b.cfg.Topic,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})
	go b.consume(ctx, b.reader, b.done)
}

func (b *KafkaBus) consume(ctx context.Context, reader *kafka.Reader, done chan struct{}) {
	defer close(done)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("kafka fetch failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		event, err := decodeEvent(msg.Value)
		if err != nil {
			b.logger.Warn("kafka event unmarshal failed", "offset", msg.Offset, "error", err)
		} else {
			b.mu.RLock()
			handler := b.handler
			b.mu.RUnlock()
			if handler != nil {
				handler(ctx, event)
			}
		}
		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			b.logger.Warn("kafka commit failed", "offset", msg.Offset, "error", err)
		}
	}
}

// Close stops the reader and flushes the writer.
func (b *KafkaBus) Close() error {
	b.mu.Lock()
	cancel, reader, done := b.cancel, b.reader, b.done
	b.mu.Unlock()

	var errs []error
	if cancel != nil {
		cancel()
		<-done
		errs = append(errs, reader.Close())
	}
	errs = append(errs, b.writer.Close())
	return errors.Join(errs...)
}

var _ Bus = (*KafkaBus)(nil)
