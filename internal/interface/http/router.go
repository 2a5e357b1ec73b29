package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/twin-dashboard/internal/infra/config"
	"github.com/yanqian/twin-dashboard/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// A nil m leaves the router uninstrumented and without /metrics.
func NewRouter(cfg *config.Config, handler *Handler, m *metrics.Metrics) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		metricsMiddleware(m),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	requireAuth := authMiddleware(handler.authSvc)

	router.GET("/healthz", handler.Healthz)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
	router.POST("/login", handler.Login)
	router.POST("/register_user", handler.Register)
	if handler.realtime != nil {
		router.GET("/ws", gin.WrapH(handler.realtime))
	}

	health := router.Group("/health", requireAuth)
	{
		health.GET("/data", handler.ListHealth)
		health.GET("/data/latest", handler.LatestHealth)
		health.GET("/data/:id/raw", handler.RawHealth)
		health.POST("/upload_health", handler.UploadHealth)
	}

	api := router.Group("/api/v1")
	{
		api.POST("/auth/refresh", handler.Refresh)
		api.GET("/missions", handler.Missions)
	}

	protected := api.Group("", requireAuth)
	{
		protected.GET("/auth/me", handler.Me)
		protected.GET("/dashboard", handler.Dashboard)

		protected.POST("/predictions", handler.Forecast)
		protected.GET("/predictions/latest", handler.LatestForecast)
		protected.GET("/predictions/chart", handler.ForecastChart)

		protected.GET("/chat/greeting", handler.ChatGreeting)
		protected.GET("/chat/messages", handler.ChatHistory)
		protected.POST("/chat/messages", handler.ChatMessage)
		protected.GET("/missions/active", handler.ActiveMission)
		protected.POST("/missions/:id/accept", handler.AcceptMission)
		protected.POST("/missions/:id/decline", handler.DeclineMission)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}

// metricsMiddleware labels by route template so path ids don't explode cardinality.
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
