package http

import (
	"log/slog"
	"net/http"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/domain/dashboard"
	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc       auth.Service
	healthSvc     healthdata.Service
	predictionSvc prediction.Service
	chatSvc       twinchat.Service
	dashboardSvc  dashboard.Service
	realtime      http.Handler
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler. realtime serves /ws and may be nil.
func NewHandler(
	authSvc auth.Service,
	healthSvc healthdata.Service,
	predictionSvc prediction.Service,
	chatSvc twinchat.Service,
	dashboardSvc dashboard.Service,
	realtime http.Handler,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authSvc:       authSvc,
		healthSvc:     healthSvc,
		predictionSvc: predictionSvc,
		chatSvc:       chatSvc,
		dashboardSvc:  dashboardSvc,
		realtime:      realtime,
		logger:        logger.With("component", "http.handler"),
	}
}
