package forecaststore

import (
	"context"
	"time"

	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	"github.com/yanqian/twin-dashboard/pkg/metrics"
)

// InstrumentedStore counts cache hits and misses of the wrapped store.
type InstrumentedStore struct {
	next    prediction.Store
	metrics *metrics.Metrics
}

// NewInstrumentedStore wraps next; a nil m makes it a pass-through.
func NewInstrumentedStore(next prediction.Store, m *metrics.Metrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: m}
}

func (s *InstrumentedStore) SaveForecast(ctx context.Context, userID int64, forecast prediction.Forecast, ttl time.Duration) error {
	return s.next.SaveForecast(ctx, userID, forecast, ttl)
}

func (s *InstrumentedStore) LatestForecast(ctx context.Context, userID int64, mode prediction.Mode) (prediction.Forecast, bool, error) {
	forecast, found, err := s.next.LatestForecast(ctx, userID, mode)
	if err != nil {
		return forecast, found, err
	}
	if found {
		s.metrics.CacheHit()
	} else {
		s.metrics.CacheMiss()
	}
	return forecast, found, nil
}

var _ prediction.Store = (*InstrumentedStore)(nil)
