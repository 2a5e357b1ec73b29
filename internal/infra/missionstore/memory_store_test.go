package missionstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, found, err := store.ActiveMission(ctx, 1)
	require.NoError(t, err)
	require.False(t, found)

	active := twinchat.ActiveMission{Mission: twinchat.SleepConsistency, TotalDays: 5}
	require.NoError(t, store.SaveActiveMission(ctx, 1, active))

	got, found, err := store.ActiveMission(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "sleep-consistency", got.ID)
	require.Equal(t, 5, got.TotalDays)

	_, found, err = store.ActiveMission(ctx, 2)
	require.NoError(t, err)
	require.False(t, found)
}

func TestValkeyStoreKey(t *testing.T) {
	require.Equal(t, "mission:7:active", NewValkeyStore(nil, "").key(7))
}
