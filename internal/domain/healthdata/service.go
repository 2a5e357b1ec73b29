package healthdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/twin-dashboard/pkg/errors"
)

// Service handles device uploads and the per-user history.
type Service interface {
	Upload(ctx context.Context, userID int64, sample Sample) (Record, error)
	List(ctx context.Context, userID int64, limit int) ([]Record, error)
	Latest(ctx context.Context, userID int64) (Record, error)
	Raw(ctx context.Context, userID int64, id string) ([]byte, error)
}

type service struct {
	cfg       Config
	repo      Repository
	storage   ObjectStorage
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the health data workflow. publisher may be nil.
func NewService(cfg Config, repo Repository, storage ObjectStorage, publisher EventPublisher, logger *slog.Logger) Service {
	if cfg.DefaultListLimit <= 0 {
		cfg.DefaultListLimit = 20
	}
	if cfg.MaxListLimit < cfg.DefaultListLimit {
		cfg.MaxListLimit = 100
	}
	return &service{
		cfg:       cfg,
		repo:      repo,
		storage:   storage,
		publisher: publisher,
		logger:    logger.With("component", "healthdata.service"),
		now:       time.Now,
	}
}

func (s *service) Upload(ctx context.Context, userID int64, sample Sample) (Record, error) {
	sample.DeviceID = strings.TrimSpace(sample.DeviceID)
	if err := Validate(sample); err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	now := s.now().UTC()
	if sample.Timestamp.IsZero() {
		sample.Timestamp = now
	}

	record := Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		Sample:    sample,
		CreatedAt: now,
	}
	body, err := json.Marshal(sample)
	if err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "failed to encode sample", err)
	}
	key := objectKey(userID, record.ID)
	if _, err := s.storage.Put(ctx, key, body, "application/json"); err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store raw upload", err)
	}
	record.ObjectKey = key

	if err := s.repo.Save(ctx, record); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned raw upload", "key", key, "error", delErr)
		}
		return Record{}, apperrors.Wrap(apperrors.CodeStorage, "failed to save upload", err)
	}

	if s.publisher != nil {
		event := NewDataEvent{
			SyncID:    record.ID,
			Message:   "New health data available",
			Timestamp: now,
			Data:      sample,
		}
		if err := s.publisher.Publish(ctx, EventNewHealthData, userID, event); err != nil {
			s.logger.Warn("publish upload event failed", "user_id", userID, "sync_id", record.ID, "error", err)
		}
	}
	s.logger.Info("health data uploaded", "user_id", userID, "sync_id", record.ID, "device_id", sample.DeviceID)
	return record, nil
}

func (s *service) List(ctx context.Context, userID int64, limit int) ([]Record, error) {
	switch {
	case limit <= 0:
		limit = s.cfg.DefaultListLimit
	case limit > s.cfg.MaxListLimit:
		limit = s.cfg.MaxListLimit
	}
	records, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to list uploads", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *service) Latest(ctx context.Context, userID int64) (Record, error) {
	records, err := s.repo.ListByUser(ctx, userID, 1)
	if err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load latest upload", err)
	}
	if len(records) == 0 {
		return Record{}, apperrors.Wrap(apperrors.CodeNotFound, "no health data uploaded yet", nil)
	}
	return records[0], nil
}

func (s *service) Raw(ctx context.Context, userID int64, id string) ([]byte, error) {
	record, found, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to load upload", err)
	}
	if !found || record.ObjectKey == "" {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "upload not found", nil)
	}
	reader, err := s.storage.Get(ctx, record.ObjectKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to read raw upload", err)
	}
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to read raw upload", err)
	}
	return body, nil
}

// Validate checks the sample against physiological bounds.
func Validate(sample Sample) error {
	var errs []error
	if strings.TrimSpace(sample.DeviceID) == "" {
		errs = append(errs, errors.New("device_id is required"))
	}
	if sample.Steps < 0 {
		errs = append(errs, errors.New("steps cannot be negative"))
	}
	if sample.HeartRate < 20 || sample.HeartRate > 250 {
		errs = append(errs, errors.New("heart_rate must be between 20 and 250"))
	}
	if sample.ActiveEnergyBurned < 0 {
		errs = append(errs, errors.New("active_energy_burned cannot be negative"))
	}
	if !between(sample.Sleep.TotalSleepHours, 0, 24) || !between(sample.Sleep.TimeInBed, 0, 24) {
		errs = append(errs, errors.New("sleep hours must be between 0 and 24"))
	}
	m := sample.AdditionalMetrics
	if !between(m.BloodOxygen, 0, 100) {
		errs = append(errs, errors.New("blood_oxygen must be between 0 and 100"))
	}
	if !between(m.StressLevel, 0, 100) {
		errs = append(errs, errors.New("stress_level must be between 0 and 100"))
	}
	if m.HRV < 0 || m.RespiratoryRate < 0 {
		errs = append(errs, errors.New("additional metrics cannot be negative"))
	}
	return errors.Join(errs...)
}

func between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func objectKey(userID int64, id string) string {
	return fmt.Sprintf("health/%d/%s.json", userID, id)
}
