package chatlog

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
)

// PostgresLog persists chat_messages in Postgres.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog constructs the adapter.
func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

// Append inserts the messages in one batch.
func (l *PostgresLog) Append(ctx context.Context, userID int64, msgs ...twinchat.Message) error {
	batch := &pgx.Batch{}
	for _, msg := range msgs {
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO chat_messages (user_id, sender, payload, created_at)
			VALUES ($1, $2, $3, $4)
		`, userID, string(msg.Sender), payload, msg.Timestamp)
	}
	return l.pool.SendBatch(ctx, batch).Close()
}

// Recent returns up to limit of the newest messages, oldest first.
func (l *PostgresLog) Recent(ctx context.Context, userID int64, limit int) ([]twinchat.Message, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT payload
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collected := make([]twinchat.Message, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var msg twinchat.Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, err
		}
		collected = append(collected, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverse(collected)
	return collected, nil
}

// reverse flips newest-first rows into chronological order.
func reverse(msgs []twinchat.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

var _ twinchat.History = (*PostgresLog)(nil)
