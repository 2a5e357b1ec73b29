package unit

import (
	"io"
	"log/slog"
	"time"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/infra/userrepo"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthService() auth.Service {
	cfg := auth.Config{Secret: "unit-secret", TokenTTL: time.Hour, RefreshTokenTTL: 24 * time.Hour}
	return auth.NewService(cfg, userrepo.NewMemoryRepository(), newTestLogger())
}
