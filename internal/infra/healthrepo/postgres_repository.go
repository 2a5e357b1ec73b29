package healthrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
)

// PostgresRepository persists uploads with the sample stored as JSONB.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const recordColumns = `id, user_id, payload, object_key, created_at`

// Save inserts the record.
func (r *PostgresRepository) Save(ctx context.Context, record healthdata.Record) error {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(record.Sample)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO health_records (id, user_id, device_id, recorded_at, payload, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, record.UserID, record.Sample.DeviceID, record.Sample.Timestamp, payload, record.ObjectKey, record.CreatedAt)
	return err
}

// ListByUser returns the newest records first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]healthdata.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM health_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []healthdata.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Get finds a single record owned by userID.
func (r *PostgresRepository) Get(ctx context.Context, userID int64, id string) (healthdata.Record, bool, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return healthdata.Record{}, false, nil
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM health_records
		WHERE user_id = $1 AND id = $2
	`, userID, parsed)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return healthdata.Record{}, false, nil
	}
	if err != nil {
		return healthdata.Record{}, false, err
	}
	return record, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (healthdata.Record, error) {
	var (
		record    healthdata.Record
		id        uuid.UUID
		payload   []byte
		objectKey *string
		created   time.Time
	)
	if err := row.Scan(&id, &record.UserID, &payload, &objectKey, &created); err != nil {
		return healthdata.Record{}, err
	}
	if err := json.Unmarshal(payload, &record.Sample); err != nil {
		return healthdata.Record{}, err
	}
	record.ID = id.String()
	if objectKey != nil {
		record.ObjectKey = *objectKey
	}
	record.CreatedAt = created.UTC()
	return record, nil
}

var _ healthdata.Repository = (*PostgresRepository)(nil)
