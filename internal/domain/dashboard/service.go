package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
	apperrors "github.com/yanqian/twin-dashboard/pkg/errors"
	"github.com/yanqian/twin-dashboard/pkg/util"
)

// Service assembles the dashboard state for a user.
type Service interface {
	State(ctx context.Context, userID int64) (State, error)
}

// Sources of dashboard state.
type (
	ProfileSource interface {
		Profile(ctx context.Context, userID int64) (auth.UserView, error)
	}
	ForecastSource interface {
		Latest(ctx context.Context, userID int64, mode prediction.Mode) (prediction.Forecast, error)
	}
	MissionSource interface {
		Active(ctx context.Context, userID int64) (twinchat.ActiveMission, error)
	}
	HealthSource interface {
		List(ctx context.Context, userID int64, limit int) ([]healthdata.Record, error)
	}
)

const (
	scoresFromDefault  = "default"
	scoresFromForecast = "forecast"

	todayScanLimit = 100
)

type service struct {
	cfg       Config
	profiles  ProfileSource
	forecasts ForecastSource
	missions  MissionSource
	health    HealthSource
	defaults  prediction.Scores
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the dashboard aggregate.
func NewService(cfg Config, profiles ProfileSource, forecasts ForecastSource, missions MissionSource, health HealthSource, defaults prediction.Scores, logger *slog.Logger) Service {
	if len(cfg.Accuracies) == 0 {
		cfg.Accuracies = DefaultAccuracies()
	}
	if defaults == (prediction.Scores{}) {
		defaults = prediction.DefaultScores()
	}
	return &service{
		cfg:       cfg,
		profiles:  profiles,
		forecasts: forecasts,
		missions:  missions,
		health:    health,
		defaults:  defaults,
		logger:    logger.With("component", "dashboard.service"),
		now:       util.NowUTC,
	}
}

func (s *service) State(ctx context.Context, userID int64) (State, error) {
	user, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return State{}, err
	}

	scores, from, err := s.scores(ctx, userID)
	if err != nil {
		return State{}, err
	}
	overall := scores.Overall()
	bands := make(map[prediction.Metric]prediction.Band, len(prediction.Metrics))
	for _, m := range prediction.Metrics {
		bands[m] = prediction.ClassifyScore(m, scores.Value(m))
	}

	state := State{
		User:        user,
		Scores:      scores,
		Overall:     overall,
		Bands:       bands,
		AvatarState: prediction.AvatarState(overall, scores.Stress),
		ScoresFrom:  from,
		GeneratedAt: s.now(),
	}
	state.ModelAccuracies = Accuracies(s.cfg.Accuracies)
	state.AccuracySuggestion = AccuracySuggestion(state.ModelAccuracies)

	mission, err := s.missions.Active(ctx, userID)
	switch {
	case err == nil:
		state.ActiveMission = &mission
	case !apperrors.IsCode(err, apperrors.CodeNotFound):
		return State{}, err
	}

	records, err := s.health.List(ctx, userID, todayScanLimit)
	if err != nil {
		return State{}, err
	}
	if len(records) > 0 {
		latest := records[0]
		state.LatestUpload = &latest
	}
	state.UploadsToday = countSince(records, util.StartOfDay(state.GeneratedAt))
	return state, nil
}

// scores prefers the most recent stored forecast over the defaults.
func (s *service) scores(ctx context.Context, userID int64) (prediction.Scores, string, error) {
	var (
		best  prediction.Forecast
		found bool
	)
	for _, mode := range []prediction.Mode{prediction.ModeTomorrow, prediction.ModeSevenDays} {
		forecast, err := s.forecasts.Latest(ctx, userID, mode)
		if err != nil {
			if apperrors.IsCode(err, apperrors.CodeNotFound) {
				continue
			}
			return prediction.Scores{}, "", err
		}
		if !found || forecast.GeneratedAt.After(best.GeneratedAt) {
			best, found = forecast, true
		}
	}
	if !found {
		return s.defaults, scoresFromDefault, nil
	}
	return best.Scores, scoresFromForecast, nil
}

// countSince relies on records being newest first.
func countSince(records []healthdata.Record, since time.Time) int {
	n := 0
	for _, r := range records {
		if r.CreatedAt.Before(since) {
			break
		}
		n++
	}
	return n
}
