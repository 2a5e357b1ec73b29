package forecaststore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
)

type forecastKey struct {
	userID int64
	mode   prediction.Mode
}

type forecastRecord struct {
	payload   prediction.Forecast
	expiresAt time.Time
}

// MemoryStore is an in-memory forecast cache for tests/dev.
type MemoryStore struct {
	mu        sync.RWMutex
	forecasts map[forecastKey]forecastRecord
	now       func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		forecasts: make(map[forecastKey]forecastRecord),
		now:       time.Now,
	}
}

// SaveForecast replaces the cached forecast for the user and mode.
func (s *MemoryStore) SaveForecast(_ context.Context, userID int64, forecast prediction.Forecast, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.forecasts[forecastKey{userID: userID, mode: forecast.Mode}] = forecastRecord{
		payload:   forecast,
		expiresAt: exp,
	}
	return nil
}

// LatestForecast implements prediction.Store.
func (s *MemoryStore) LatestForecast(_ context.Context, userID int64, mode prediction.Mode) (prediction.Forecast, bool, error) {
	key := forecastKey{userID: userID, mode: mode}
	s.mu.RLock()
	record, ok := s.forecasts[key]
	s.mu.RUnlock()
	if !ok {
		return prediction.Forecast{}, false, nil
	}
	if !record.expiresAt.IsZero() && record.expiresAt.Before(s.now()) {
		s.mu.Lock()
		delete(s.forecasts, key)
		s.mu.Unlock()
		return prediction.Forecast{}, false, nil
	}
	return record.payload, true, nil
}

var _ prediction.Store = (*MemoryStore)(nil)
