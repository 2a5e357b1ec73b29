package prediction

import (
	"strings"
	"time"
)

// Mode selects the forecast horizon.
type Mode string

const (
	// ModeTomorrow produces one point per hour of the next calendar day.
	ModeTomorrow Mode = "tomorrow"
	// ModeSevenDays produces morning/afternoon/evening points for a week starting today.
	ModeSevenDays Mode = "sevenDays"
)

// ParseMode accepts the canonical names plus the "7days" alias used by the dashboard.
func ParseMode(raw string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "tomorrow":
		return ModeTomorrow, true
	case "sevendays", "7days", "seven_days":
		return ModeSevenDays, true
	default:
		return "", false
	}
}

// Points reports the fixed series length for the mode.
func (m Mode) Points() int {
	if m == ModeTomorrow {
		return hoursPerDay
	}
	return forecastDays * len(periods)
}

// Metric names one of the dashboard scores.
type Metric string

const (
	MetricHealth    Metric = "health"
	MetricEnergy    Metric = "energy"
	MetricCognitive Metric = "cognitive"
	MetricStress    Metric = "stress"
)

// Metrics lists every metric in dashboard order.
var Metrics = []Metric{MetricHealth, MetricEnergy, MetricCognitive, MetricStress}

// ParseMetric validates a metric name.
func ParseMetric(raw string) (Metric, bool) {
	m := Metric(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Metrics {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// Period labels the three fixed samples of a 7-day forecast day.
type Period string

const (
	PeriodMorning   Period = "Morning"
	PeriodAfternoon Period = "Afternoon"
	PeriodEvening   Period = "Evening"
)

type periodSlot struct {
	period Period
	hour   int
}

var periods = []periodSlot{
	{period: PeriodMorning, hour: 8},
	{period: PeriodAfternoon, hour: 14},
	{period: PeriodEvening, hour: 20},
}

const (
	hoursPerDay  = 24
	forecastDays = 7
	minScore     = 0
	maxScore     = 100
)

// SamplePoint is a single synthetic observation.
type SamplePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value"`
	DayIndex  *int      `json:"dayIndex,omitempty"`
	Period    Period    `json:"period,omitempty"`
	HourOfDay *int      `json:"hourOfDay,omitempty"`
}

// Hour returns the hour of day the point represents.
func (p SamplePoint) Hour() int {
	if p.HourOfDay != nil {
		return *p.HourOfDay
	}
	return p.Timestamp.Hour()
}

// Series is an ordered, timestamp-ascending run of points.
type Series []SamplePoint

// Values extracts the point values in order.
func (s Series) Values() []int {
	out := make([]int, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Severity grades an insight.
type Severity string

const (
	SeverityPositive Severity = "positive"
	SeverityWarning  Severity = "warning"
	SeverityNegative Severity = "negative"
	SeverityNeutral  Severity = "neutral"
)

// Insight is a qualitative statement derived from one or more series.
type Insight struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Source supplies uniform random numbers in [0, 1).
type Source interface {
	Float64() float64
}
