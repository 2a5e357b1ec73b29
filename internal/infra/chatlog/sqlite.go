package chatlog

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
)

// SQLiteLog persists chat_messages in an embedded SQLite file.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog wraps an opened database.
func NewSQLiteLog(db *sql.DB) *SQLiteLog {
	return &SQLiteLog{db: db}
}

// Append inserts the messages inside one transaction.
func (l *SQLiteLog) Append(ctx context.Context, userID int64, msgs ...twinchat.Message) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chat_messages (user_id, sender, payload, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, msg := range msgs {
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, userID, string(msg.Sender), string(payload), msg.Timestamp); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Recent returns up to limit of the newest messages, oldest first.
func (l *SQLiteLog) Recent(ctx context.Context, userID int64, limit int) ([]twinchat.Message, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT payload
		FROM chat_messages
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collected := make([]twinchat.Message, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var msg twinchat.Message
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
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

var _ twinchat.History = (*SQLiteLog)(nil)
