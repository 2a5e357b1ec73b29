package prediction

import (
	"math"
	"strings"
)

// BehaviorLabel is the qualitative direction of a user habit.
type BehaviorLabel string

const (
	BehaviorImproving BehaviorLabel = "improving"
	BehaviorDeclining BehaviorLabel = "declining"
	BehaviorStable    BehaviorLabel = "stable"
)

// ParseBehaviorLabel treats an empty label as stable.
func ParseBehaviorLabel(raw string) (BehaviorLabel, bool) {
	switch BehaviorLabel(strings.ToLower(strings.TrimSpace(raw))) {
	case "", BehaviorStable:
		return BehaviorStable, true
	case BehaviorImproving:
		return BehaviorImproving, true
	case BehaviorDeclining:
		return BehaviorDeclining, true
	default:
		return "", false
	}
}

// Behavior captures the habit labels that drive each metric's forecast.
type Behavior struct {
	NutritionQuality  BehaviorLabel `json:"nutritionQuality"`
	SleepConsistency  BehaviorLabel `json:"sleepConsistency"`
	ExerciseFrequency BehaviorLabel `json:"exerciseFrequency"`
	StressManagement  BehaviorLabel `json:"stressManagement"`
}

// LabelFor maps a metric to the habit that drives it.
func (b Behavior) LabelFor(metric Metric) BehaviorLabel {
	var label BehaviorLabel
	switch metric {
	case MetricHealth:
		label = b.NutritionQuality
	case MetricEnergy:
		label = b.SleepConsistency
	case MetricCognitive:
		label = b.ExerciseFrequency
	case MetricStress:
		label = b.StressManagement
	}
	if label == "" {
		return BehaviorStable
	}
	return label
}

// Params are the walk inputs for one metric.
type Params struct {
	Volatility float64 `json:"volatility"`
	Trend      float64 `json:"trend"`
}

var metricVolatility = map[Metric]float64{
	MetricHealth:    2,
	MetricEnergy:    4,
	MetricCognitive: 3,
	MetricStress:    5,
}

// ParamsFor derives volatility and trend for a metric from its behavior label.
// Improving stress management pushes the stress score down.
func ParamsFor(metric Metric, label BehaviorLabel) Params {
	trend := 0.0
	switch label {
	case BehaviorImproving:
		trend = 1
	case BehaviorDeclining:
		trend = -1
	}
	if metric == MetricStress {
		trend = -trend
	}
	return Params{Volatility: metricVolatility[metric], Trend: trend}
}

// Scores are the dashboard's current metric values on a 0-100 scale.
type Scores struct {
	Health    int `json:"health"`
	Energy    int `json:"energy"`
	Cognitive int `json:"cognitive"`
	Stress    int `json:"stress"`
}

// DefaultScores are shown before a user has uploaded any data.
func DefaultScores() Scores {
	return Scores{Health: 68, Energy: 75, Cognitive: 83, Stress: 42}
}

// ScoreOverrides carries the scores a client sent. Missing fields keep the
// base value instead of becoming zero.
type ScoreOverrides struct {
	Health    *int `json:"health,omitempty"`
	Energy    *int `json:"energy,omitempty"`
	Cognitive *int `json:"cognitive,omitempty"`
	Stress    *int `json:"stress,omitempty"`
}

// Apply returns base with every present override applied.
func (o ScoreOverrides) Apply(base Scores) Scores {
	pick := func(v *int, fallback int) int {
		if v == nil {
			return fallback
		}
		return *v
	}
	return Scores{
		Health:    pick(o.Health, base.Health),
		Energy:    pick(o.Energy, base.Energy),
		Cognitive: pick(o.Cognitive, base.Cognitive),
		Stress:    pick(o.Stress, base.Stress),
	}
}

// Value returns the score for metric.
func (s Scores) Value(metric Metric) int {
	switch metric {
	case MetricHealth:
		return s.Health
	case MetricEnergy:
		return s.Energy
	case MetricCognitive:
		return s.Cognitive
	case MetricStress:
		return s.Stress
	}
	return 0
}

// Overall averages the scores with stress inverted.
func (s Scores) Overall() int {
	sum := s.Health + s.Energy + s.Cognitive + (maxScore - s.Stress)
	return int(math.Round(float64(sum) / 4))
}

// Valid reports whether every score lies in [0, 100].
func (s Scores) Valid() bool {
	for _, m := range Metrics {
		v := s.Value(m)
		if v < minScore || v > maxScore {
			return false
		}
	}
	return true
}

// Band buckets a score for display.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandFair      Band = "fair"
	BandPoor      Band = "poor"
)

// ClassifyScore buckets value; for stress lower is better.
func ClassifyScore(metric Metric, value int) Band {
	if metric == MetricStress {
		switch {
		case value <= 30:
			return BandGood
		case value <= 60:
			return BandFair
		default:
			return BandPoor
		}
	}
	switch {
	case value >= 80:
		return BandExcellent
	case value >= 60:
		return BandGood
	case value >= 40:
		return BandFair
	default:
		return BandPoor
	}
}

// TrendSummary compares the first and last points of a series.
type TrendSummary struct {
	Start      int  `json:"start"`
	End        int  `json:"end"`
	Difference int  `json:"difference"`
	Rising     bool `json:"rising"`
	Favorable  bool `json:"favorable"`
}

// Trend summarises series for metric. An empty series yields the zero summary.
func Trend(metric Metric, series Series) TrendSummary {
	if len(series) == 0 {
		return TrendSummary{}
	}
	start, end := series[0].Value, lastValue(series)
	rising := end > start
	favorable := rising
	if metric == MetricStress {
		favorable = end < start
	}
	diff := end - start
	if diff < 0 {
		diff = -diff
	}
	return TrendSummary{Start: start, End: end, Difference: diff, Rising: rising, Favorable: favorable}
}

// AvatarState picks the twin's mood from the overall and stress scores.
func AvatarState(overall, stress int) string {
	switch {
	case overall < 40:
		return "poor"
	case overall > 80:
		return "excellent"
	case stress > 70:
		return "stressed"
	default:
		return "average"
	}
}
