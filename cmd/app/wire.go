//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/twin-dashboard/internal/bootstrap"
	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
	"github.com/yanqian/twin-dashboard/internal/infra/config"
	httpiface "github.com/yanqian/twin-dashboard/internal/interface/http"
	"github.com/yanqian/twin-dashboard/pkg/logger"
	"github.com/yanqian/twin-dashboard/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.New,
		provideAuthConfig,
		provideHealthConfig,
		providePredictionConfig,
		provideDashboardConfig,
		provideDefaultScores,
		provideDatabase,
		provideUserRepository,
		provideHealthRepository,
		provideObjectStorage,
		provideValkeyClient,
		provideForecastStore,
		provideMissionStore,
		provideChatHistory,
		provideEventBus,
		provideEventPublisher,
		provideGenerator,
		provideChartRenderer,
		provideChatRules,
		auth.NewService,
		healthdata.NewService,
		prediction.NewService,
		twinchat.NewService,
		provideDashboardService,
		provideHub,
		provideRealtimeHandler,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
