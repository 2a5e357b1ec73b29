package prediction

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/twin-dashboard/pkg/errors"
)

// Service exposes forecast workflows to the transport layer.
type Service interface {
	Forecast(ctx context.Context, userID int64, req ForecastRequest) (Forecast, error)
	Latest(ctx context.Context, userID int64, mode Mode) (Forecast, error)
	Chart(ctx context.Context, userID int64, mode Mode, metric Metric) ([]byte, error)
}

// Store keeps the most recent forecast per user and mode.
type Store interface {
	SaveForecast(ctx context.Context, userID int64, forecast Forecast, ttl time.Duration) error
	LatestForecast(ctx context.Context, userID int64, mode Mode) (Forecast, bool, error)
}

// ChartRenderer draws a series as an image.
type ChartRenderer interface {
	Render(title string, metric Metric, mode Mode, series Series) ([]byte, error)
}

// Config drives the forecast service.
type Config struct {
	ForecastTTL   time.Duration
	DefaultScores Scores
}

// ForecastRequest is accepted from the dashboard.
type ForecastRequest struct {
	Mode     string   `json:"mode"`
	Scores   *ScoreOverrides `json:"scores,omitempty"`
	Behavior Behavior        `json:"behavior"`
}

// Forecast bundles the generated series with the insights derived from them.
type Forecast struct {
	Mode        Mode                    `json:"mode"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Scores      Scores                  `json:"scores"`
	Series      map[Metric]Series       `json:"series"`
	Trends      map[Metric]TrendSummary `json:"trends"`
	Insights    []Insight               `json:"insights"`
}

type service struct {
	cfg      Config
	gen      *Generator
	store    Store
	renderer ChartRenderer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the forecast domain. store and renderer may be nil.
func NewService(cfg Config, gen *Generator, store Store, renderer ChartRenderer, logger *slog.Logger) Service {
	if cfg.DefaultScores == (Scores{}) {
		cfg.DefaultScores = DefaultScores()
	}
	return &service{
		cfg:      cfg,
		gen:      gen,
		store:    store,
		renderer: renderer,
		logger:   logger.With("component", "prediction.service"),
		now:      time.Now,
	}
}

func (s *service) Forecast(ctx context.Context, userID int64, req ForecastRequest) (Forecast, error) {
	forecast, err := s.build(req)
	if err != nil {
		return Forecast{}, err
	}
	mode := forecast.Mode
	if s.store != nil {
		if err := s.store.SaveForecast(ctx, userID, forecast, s.cfg.ForecastTTL); err != nil {
			s.logger.Warn("save forecast failed", "user_id", userID, "mode", mode, "error", err)
		}
	}
	s.logger.Info("forecast generated", "user_id", userID, "mode", mode, "insights", len(forecast.Insights))
	return forecast, nil
}

func (s *service) Latest(ctx context.Context, userID int64, mode Mode) (Forecast, error) {
	if s.store == nil {
		return Forecast{}, apperrors.Wrap(apperrors.CodeNotFound, "no forecast stored", nil)
	}
	forecast, found, err := s.store.LatestForecast(ctx, userID, mode)
	if err != nil {
		return Forecast{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load forecast", err)
	}
	if !found {
		return Forecast{}, apperrors.Wrap(apperrors.CodeNotFound, "no forecast stored", nil)
	}
	return forecast, nil
}

func (s *service) Chart(ctx context.Context, userID int64, mode Mode, metric Metric) ([]byte, error) {
	if s.renderer == nil {
		return nil, apperrors.Wrap(apperrors.CodeChart, "chart rendering is not configured", nil)
	}
	forecast, err := s.Latest(ctx, userID, mode)
	if err != nil {
		if !apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, err
		}
		// Charts are served on GET, so the fallback forecast is not stored.
		forecast, err = s.build(ForecastRequest{Mode: string(mode)})
		if err != nil {
			return nil, err
		}
	}
	series := forecast.Series[metric]
	if len(series) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown metric", nil)
	}
	img, err := s.renderer.Render(chartTitle(metric, mode), metric, mode, series)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeChart, "failed to render chart", err)
	}
	return img, nil
}

func (s *service) generate(mode Mode, scores Scores, behavior Behavior) Forecast {
	series := make(map[Metric]Series, len(Metrics))
	trends := make(map[Metric]TrendSummary, len(Metrics))
	for _, metric := range Metrics {
		params := ParamsFor(metric, behavior.LabelFor(metric))
		series[metric] = s.gen.GenerateSeries(float64(scores.Value(metric)), params.Volatility, params.Trend, mode)
		trends[metric] = Trend(metric, series[metric])
	}
	return Forecast{
		Mode:        mode,
		GeneratedAt: s.now().UTC(),
		Scores:      scores,
		Series:      series,
		Trends:      trends,
		Insights:    s.gen.DeriveInsights(series, mode),
	}
}

// build validates req and generates a forecast without storing it.
func (s *service) build(req ForecastRequest) (Forecast, error) {
	mode, ok := ParseMode(req.Mode)
	if !ok {
		return Forecast{}, apperrors.Wrap(apperrors.CodeInvalidInput, "mode must be tomorrow or 7days", nil)
	}
	scores := s.cfg.DefaultScores
	if req.Scores != nil {
		scores = req.Scores.Apply(scores)
	}
	if !scores.Valid() {
		return Forecast{}, apperrors.Wrap(apperrors.CodeInvalidInput, "scores must be between 0 and 100", nil)
	}
	behavior, err := normalizeBehavior(req.Behavior)
	if err != nil {
		return Forecast{}, err
	}
	return s.generate(mode, scores, behavior), nil
}

func normalizeBehavior(b Behavior) (Behavior, error) {
	out := Behavior{}
	fields := []struct {
		name string
		in   BehaviorLabel
		out  *BehaviorLabel
	}{
		{"nutritionQuality", b.NutritionQuality, &out.NutritionQuality},
		{"sleepConsistency", b.SleepConsistency, &out.SleepConsistency},
		{"exerciseFrequency", b.ExerciseFrequency, &out.ExerciseFrequency},
		{"stressManagement", b.StressManagement, &out.StressManagement},
	}
	for _, f := range fields {
		label, ok := ParseBehaviorLabel(string(f.in))
		if !ok {
			return Behavior{}, apperrors.Wrap(apperrors.CodeInvalidInput, f.name+" must be improving, declining or stable", nil)
		}
		*f.out = label
	}
	return out, nil
}

func chartTitle(metric Metric, mode Mode) string {
	horizon := "Next 7 Days"
	if mode == ModeTomorrow {
		horizon = "Tomorrow"
	}
	name := string(metric)
	if name != "" {
		name = string(name[0]-'a'+'A') + name[1:]
	}
	return name + " Forecast - " + horizon
}
