package healthrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
)

// SQLiteRepository persists uploads in an embedded SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an opened database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save inserts the record.
func (r *SQLiteRepository) Save(ctx context.Context, record healthdata.Record) error {
	payload, err := json.Marshal(record.Sample)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO health_records (id, user_id, device_id, recorded_at, payload, object_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.UserID, record.Sample.DeviceID, record.Sample.Timestamp.UTC(), string(payload), record.ObjectKey, record.CreatedAt.UTC())
	return err
}

// ListByUser returns the newest records first.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]healthdata.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, payload, object_key, created_at
		FROM health_records
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []healthdata.Record
	for rows.Next() {
		record, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Get finds a single record owned by userID.
func (r *SQLiteRepository) Get(ctx context.Context, userID int64, id string) (healthdata.Record, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, payload, object_key, created_at
		FROM health_records
		WHERE user_id = ? AND id = ?
	`, userID, id)
	record, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return healthdata.Record{}, false, nil
	}
	if err != nil {
		return healthdata.Record{}, false, err
	}
	return record, true, nil
}

func scanSQLiteRecord(row rowScanner) (healthdata.Record, error) {
	var (
		record    healthdata.Record
		payload   string
		objectKey sql.NullString
		created   time.Time
	)
	if err := row.Scan(&record.ID, &record.UserID, &payload, &objectKey, &created); err != nil {
		return healthdata.Record{}, err
	}
	if err := json.Unmarshal([]byte(payload), &record.Sample); err != nil {
		return healthdata.Record{}, err
	}
	record.ObjectKey = objectKey.String
	record.CreatedAt = created.UTC()
	return record, nil
}

var _ healthdata.Repository = (*SQLiteRepository)(nil)
