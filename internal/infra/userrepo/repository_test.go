package userrepo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/infra/database"
)

func TestRepositories(t *testing.T) {
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repos := map[string]auth.Repository{
		"memory": NewMemoryRepository(),
		"sqlite": NewSQLiteRepository(db),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			user, err := repo.Create(ctx, "alex", "alex@example.com", "hash")
			require.NoError(t, err)
			require.NotZero(t, user.ID)
			require.False(t, user.CreatedAt.IsZero())

			byName, found, err := repo.GetByUsername(ctx, "alex")
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, user.ID, byName.ID)
			require.Equal(t, "hash", byName.PasswordHash)

			byEmail, found, err := repo.GetByEmail(ctx, "alex@example.com")
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "alex", byEmail.Username)

			byID, found, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "alex@example.com", byID.Email)

			_, found, err = repo.GetByUsername(ctx, "nobody")
			require.NoError(t, err)
			require.False(t, found)

			_, err = repo.Create(ctx, "alex", "second@example.com", "hash")
			require.ErrorIs(t, err, auth.ErrUsernameExists)

			_, err = repo.Create(ctx, "sam", "alex@example.com", "hash")
			require.ErrorIs(t, err, auth.ErrEmailExists)
		})
	}
}
