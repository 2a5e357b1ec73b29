package missionstore

import (
	"context"
	"sync"

	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
)

// MemoryStore keeps active missions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	missions map[int64]twinchat.ActiveMission
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{missions: make(map[int64]twinchat.ActiveMission)}
}

func (s *MemoryStore) ActiveMission(_ context.Context, userID int64) (twinchat.ActiveMission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.missions[userID]
	return m, ok, nil
}

func (s *MemoryStore) SaveActiveMission(_ context.Context, userID int64, mission twinchat.ActiveMission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missions[userID] = mission
	return nil
}

var _ twinchat.MissionStore = (*MemoryStore)(nil)
