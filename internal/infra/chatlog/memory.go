package chatlog

import (
	"context"
	"sync"

	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
)

// MemoryLog stores conversation messages in-memory.
type MemoryLog struct {
	mu       sync.RWMutex
	messages map[int64][]twinchat.Message
}

// NewMemoryLog constructs the in-memory message log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{messages: make(map[int64][]twinchat.Message)}
}

// Append stores messages in arrival order.
func (l *MemoryLog) Append(_ context.Context, userID int64, msgs ...twinchat.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages[userID] = append(l.messages[userID], msgs...)
	return nil
}

// Recent returns up to limit of the newest messages, oldest first.
func (l *MemoryLog) Recent(_ context.Context, userID int64, limit int) ([]twinchat.Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	msgs := l.messages[userID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]twinchat.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

var _ twinchat.History = (*MemoryLog)(nil)
