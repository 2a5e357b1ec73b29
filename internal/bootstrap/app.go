package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/twin-dashboard/internal/infra/config"
	"github.com/yanqian/twin-dashboard/internal/infra/events"
	"github.com/yanqian/twin-dashboard/internal/interface/ws"
)

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	hub    *ws.Hub
	bus    events.Bus
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, hub *ws.Hub, bus events.Bus) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With("component", "bootstrap"),
		server: server,
		hub:    hub,
		bus:    bus,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		return a.shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// shutdown stops accepting requests, then drains the event bus and closes live sockets.
func (a *App) shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if a.bus != nil {
		if busErr := a.bus.Close(); busErr != nil {
			a.logger.Warn("event bus close failed", "error", busErr)
		}
	}
	if a.hub != nil {
		if hubErr := a.hub.Close(ctx); hubErr != nil {
			a.logger.Warn("websocket hub close failed", "error", hubErr)
		}
	}
	return err
}
