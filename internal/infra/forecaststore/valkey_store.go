package forecaststore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
)

// ValkeyStore persists forecasts using a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "forecast"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) SaveForecast(ctx context.Context, userID int64, forecast prediction.Forecast, ttl time.Duration) error {
	payload, err := json.Marshal(forecast)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.entryKey(userID, forecast.Mode)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) LatestForecast(ctx context.Context, userID int64, mode prediction.Mode) (prediction.Forecast, bool, error) {
	cmd := s.client.B().Get().Key(s.entryKey(userID, mode)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return prediction.Forecast{}, false, nil
		}
		return prediction.Forecast{}, false, err
	}
	var forecast prediction.Forecast
	if err := json.Unmarshal([]byte(payload), &forecast); err != nil {
		return prediction.Forecast{}, false, err
	}
	return forecast, true, nil
}

func (s *ValkeyStore) entryKey(userID int64, mode prediction.Mode) string {
	return fmt.Sprintf("%s:%d:%s", s.prefix, userID, mode)
}

var _ prediction.Store = (*ValkeyStore)(nil)
