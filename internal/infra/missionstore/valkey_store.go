package missionstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
)

// ValkeyStore persists active missions as JSON strings.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "mission"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) ActiveMission(ctx context.Context, userID int64) (twinchat.ActiveMission, bool, error) {
	cmd := s.client.B().Get().Key(s.key(userID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return twinchat.ActiveMission{}, false, nil
		}
		return twinchat.ActiveMission{}, false, err
	}
	var mission twinchat.ActiveMission
	if err := json.Unmarshal([]byte(payload), &mission); err != nil {
		return twinchat.ActiveMission{}, false, err
	}
	return mission, true, nil
}

func (s *ValkeyStore) SaveActiveMission(ctx context.Context, userID int64, mission twinchat.ActiveMission) error {
	payload, err := json.Marshal(mission)
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.key(userID)).Value(string(payload)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) key(userID int64) string {
	return fmt.Sprintf("%s:%d:active", s.prefix, userID)
}

var _ twinchat.MissionStore = (*ValkeyStore)(nil)
