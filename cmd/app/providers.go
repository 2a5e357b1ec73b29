package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/domain/dashboard"
	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
	"github.com/yanqian/twin-dashboard/internal/infra/chart"
	"github.com/yanqian/twin-dashboard/internal/infra/chatlog"
	"github.com/yanqian/twin-dashboard/internal/infra/config"
	"github.com/yanqian/twin-dashboard/internal/infra/database"
	"github.com/yanqian/twin-dashboard/internal/infra/events"
	"github.com/yanqian/twin-dashboard/internal/infra/forecaststore"
	"github.com/yanqian/twin-dashboard/internal/infra/healthrepo"
	"github.com/yanqian/twin-dashboard/internal/infra/missionstore"
	"github.com/yanqian/twin-dashboard/internal/infra/storage"
	"github.com/yanqian/twin-dashboard/internal/infra/userrepo"
	"github.com/yanqian/twin-dashboard/internal/interface/ws"
	"github.com/yanqian/twin-dashboard/pkg/metrics"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

func provideHealthConfig(cfg *config.Config) healthdata.Config {
	return healthdata.Config{
		DefaultListLimit: cfg.Health.DefaultListLimit,
		MaxListLimit:     cfg.Health.MaxListLimit,
	}
}

func providePredictionConfig(cfg *config.Config) prediction.Config {
	return prediction.Config{
		ForecastTTL:   cfg.Prediction.ForecastTTL,
		DefaultScores: cfg.Prediction.DefaultScores,
	}
}

func provideDashboardConfig(cfg *config.Config) dashboard.Config {
	return dashboard.Config{Accuracies: cfg.Dashboard.ModelAccuracies}
}

func provideDefaultScores(cfg *config.Config) prediction.Scores {
	return cfg.Prediction.DefaultScores
}

func provideGenerator(cfg *config.Config) *prediction.Generator {
	return prediction.NewGenerator(prediction.WithTuning(cfg.Prediction.Tuning))
}

func provideChartRenderer() prediction.ChartRenderer {
	return chart.NewRenderer()
}

func provideChatRules() []twinchat.Rule {
	return twinchat.DefaultRules()
}

// provideDatabase opens the configured database, falling back to memory on failure.
func provideDatabase(cfg *config.Config, logger *slog.Logger) (*database.Handle, func()) {
	handle := &database.Handle{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, database.PostgresConfig{
			DSN:      strings.TrimSpace(cfg.Database.DSN),
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			logger.Error("postgres unavailable, using memory repositories", "error", err)
			break
		}
		logger.Info("postgres repositories enabled")
		handle.Pool = pool
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			logger.Error("sqlite unavailable, using memory repositories", "error", err)
			break
		}
		logger.Info("sqlite repositories enabled", "path", cfg.Database.SQLitePath)
		handle.SQL = db
	default:
		logger.Info("database driver is memory, using memory repositories")
	}
	return handle, handle.Close
}

func provideUserRepository(handle *database.Handle) auth.Repository {
	switch {
	case handle.Pool != nil:
		return userrepo.NewPostgresRepository(handle.Pool)
	case handle.SQL != nil:
		return userrepo.NewSQLiteRepository(handle.SQL)
	default:
		return userrepo.NewMemoryRepository()
	}
}

func provideHealthRepository(handle *database.Handle) healthdata.Repository {
	switch {
	case handle.Pool != nil:
		return healthrepo.NewPostgresRepository(handle.Pool)
	case handle.SQL != nil:
		return healthrepo.NewSQLiteRepository(handle.SQL)
	default:
		return healthrepo.NewMemoryRepository()
	}
}

func provideChatHistory(handle *database.Handle) twinchat.History {
	switch {
	case handle.Pool != nil:
		return chatlog.NewPostgresLog(handle.Pool)
	case handle.SQL != nil:
		return chatlog.NewSQLiteLog(handle.SQL)
	default:
		return chatlog.NewMemoryLog()
	}
}

func provideObjectStorage(cfg *config.Config, logger *slog.Logger) healthdata.ObjectStorage {
	if cfg.Storage.Driver != config.StorageMinio {
		return storage.NewMemoryStorage()
	}
	store, err := storage.NewMinioStorage(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize minio storage, using memory storage", "error", err)
		return storage.NewMemoryStorage()
	}
	logger.Info("minio storage enabled", "bucket", cfg.Storage.Bucket)
	return store
}

// provideValkeyClient returns nil when the cache is disabled or unreachable.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	noop := func() {}
	if !cfg.Cache.Enabled {
		return nil, noop
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory stores", "error", err)
		return nil, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory stores", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory stores", "error", err)
		client.Close()
		return nil, noop
	}
	logger.Info("valkey cache enabled", "addr", cfg.Cache.Addr)
	return client, client.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideForecastStore(client valkey.Client, m *metrics.Metrics) prediction.Store {
	if client == nil {
		return forecaststore.NewInstrumentedStore(forecaststore.NewMemoryStore(), m)
	}
	return forecaststore.NewInstrumentedStore(forecaststore.NewValkeyStore(client, "forecast"), m)
}

func provideMissionStore(client valkey.Client) twinchat.MissionStore {
	if client == nil {
		return missionstore.NewMemoryStore()
	}
	return missionstore.NewValkeyStore(client, "mission")
}

func provideEventBus(cfg *config.Config, client valkey.Client, logger *slog.Logger) events.Bus {
	switch cfg.Events.Driver {
	case config.EventsKafka:
		bus, err := events.NewKafkaBus(events.KafkaConfig{
			Brokers:    cfg.Events.Brokers,
			Topic:      cfg.Events.Topic,
			GroupID:    cfg.Events.GroupID,
			InstanceID: cfg.Events.InstanceID,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize kafka bus, using in-process bus", "error", err)
			return events.NewInProcessBus()
		}
		logger.Info("kafka event bus enabled", "topic", cfg.Events.Topic, "group", bus.ConsumerGroup())
		return bus
	case config.EventsValkey:
		if client == nil {
			logger.Warn("valkey unavailable, using in-process bus")
			return events.NewInProcessBus()
		}
		logger.Info("valkey event bus enabled", "channel", cfg.Events.Channel)
		return events.NewValkeyBus(client, cfg.Events.Channel, logger)
	default:
		return events.NewInProcessBus()
	}
}

func provideEventPublisher(bus events.Bus) healthdata.EventPublisher {
	return bus
}

// provideHub subscribes the hub to the bus so uploads reach open dashboards.
func provideHub(cfg *config.Config, authSvc auth.Service, bus events.Bus, m *metrics.Metrics, logger *slog.Logger) *ws.Hub {
	hub := ws.NewHub(ws.Config{
		PingInterval:   cfg.WebSocket.PingInterval,
		WriteTimeout:   cfg.WebSocket.WriteTimeout,
		MaxClients:     cfg.WebSocket.MaxClients,
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		Metrics:        m,
	}, authSvc, logger)
	bus.SetHandler(hub.Dispatch)
	return hub
}

func provideRealtimeHandler(hub *ws.Hub) http.Handler {
	return hub
}

func provideDashboardService(cfg dashboard.Config, authSvc auth.Service, predictionSvc prediction.Service, chatSvc twinchat.Service, healthSvc healthdata.Service, defaults prediction.Scores, logger *slog.Logger) dashboard.Service {
	return dashboard.NewService(cfg, authSvc, predictionSvc, chatSvc, healthSvc, defaults, logger)
}
