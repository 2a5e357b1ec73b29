package unit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/domain/dashboard"
	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
	"github.com/yanqian/twin-dashboard/internal/infra/chart"
	"github.com/yanqian/twin-dashboard/internal/infra/chatlog"
	"github.com/yanqian/twin-dashboard/internal/infra/forecaststore"
	"github.com/yanqian/twin-dashboard/internal/infra/healthrepo"
	"github.com/yanqian/twin-dashboard/internal/infra/missionstore"
	"github.com/yanqian/twin-dashboard/internal/infra/storage"
)

func TestForecastMissionAndDashboard(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	authSvc := newAuthService()
	user, err := authSvc.Register(ctx, auth.RegisterRequest{Username: "linus", Email: "linus@example.com", Password: "password123"})
	require.NoError(t, err)

	gen := prediction.NewGenerator(prediction.WithSource(prediction.NewSeededSource(11)))
	predictionSvc := prediction.NewService(prediction.Config{ForecastTTL: time.Hour}, gen, forecaststore.NewMemoryStore(), chart.NewRenderer(), logger)
	chatSvc := twinchat.NewService(nil, missionstore.NewMemoryStore(), chatlog.NewMemoryLog(), logger)
	healthSvc := healthdata.NewService(healthdata.Config{}, healthrepo.NewMemoryRepository(), storage.NewMemoryStorage(), nil, logger)
	dashboardSvc := dashboard.NewService(dashboard.Config{}, authSvc, predictionSvc, chatSvc, healthSvc, prediction.Scores{}, logger)

	state, err := dashboardSvc.State(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "default", state.ScoresFrom)
	require.Nil(t, state.ActiveMission)

	scores := prediction.Scores{Health: 85, Energy: 82, Cognitive: 90, Stress: 20}
	overrides := prediction.ScoreOverrides{Health: &scores.Health, Energy: &scores.Energy, Cognitive: &scores.Cognitive, Stress: &scores.Stress}
	forecast, err := predictionSvc.Forecast(ctx, user.ID, prediction.ForecastRequest{Mode: "tomorrow", Scores: &overrides})
	require.NoError(t, err)
	require.Len(t, forecast.Series[prediction.MetricHealth], 24)

	reply, err := chatSvc.Send(ctx, user.ID, user.Username, twinchat.SendRequest{Text: "I feel stressed"})
	require.NoError(t, err)
	require.Equal(t, twinchat.MessageMission, reply.Messages[1].Type)
	_, _, err = chatSvc.Accept(ctx, user.ID, reply.Messages[1].Mission.ID)
	require.NoError(t, err)

	_, err = healthSvc.Upload(ctx, user.ID, healthdata.GenerateSample("", nil, time.Now()))
	require.NoError(t, err)

	state, err = dashboardSvc.State(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "forecast", state.ScoresFrom)
	require.Equal(t, scores, state.Scores)
	require.Equal(t, "excellent", state.AvatarState)
	require.Equal(t, "mindfulness-week", state.ActiveMission.ID)
	require.Equal(t, 7, state.ActiveMission.TotalDays)
	require.NotNil(t, state.LatestUpload)
	require.Equal(t, healthdata.DefaultDeviceID, state.LatestUpload.Sample.DeviceID)
	require.Equal(t, 1, state.UploadsToday)
}
