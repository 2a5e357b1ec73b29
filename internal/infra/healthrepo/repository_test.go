package healthrepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/infra/database"
)

func TestRepositories(t *testing.T) {
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	// health_records has no FK in sqlite, so no user row is needed.

	repos := map[string]healthdata.Repository{
		"memory": NewMemoryRepository(),
		"sqlite": NewSQLiteRepository(db),
	}
	base := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var ids []string
			for i := 0; i < 3; i++ {
				sample := healthdata.Sample{DeviceID: "watch", Timestamp: base, Steps: 1000 * (i + 1), HeartRate: 70}
				record := healthdata.Record{
					ID:        uuid.NewString(),
					UserID:    1,
					Sample:    sample,
					ObjectKey: "health/1/x.json",
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}
				require.NoError(t, repo.Save(ctx, record))
				ids = append(ids, record.ID)
			}
			require.NoError(t, repo.Save(ctx, healthdata.Record{ID: uuid.NewString(), UserID: 2, Sample: healthdata.Sample{DeviceID: "other"}, CreatedAt: base}))

			records, err := repo.ListByUser(ctx, 1, 2)
			require.NoError(t, err)
			require.Len(t, records, 2)
			require.Equal(t, ids[2], records[0].ID)
			require.Equal(t, 3000, records[0].Sample.Steps)
			require.Equal(t, ids[1], records[1].ID)
			require.True(t, records[0].CreatedAt.Equal(base.Add(2*time.Minute)))

			got, found, err := repo.Get(ctx, 1, ids[0])
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "health/1/x.json", got.ObjectKey)
			require.Equal(t, "watch", got.Sample.DeviceID)

			_, found, err = repo.Get(ctx, 2, ids[0])
			require.NoError(t, err)
			require.False(t, found)
		})
	}
}
