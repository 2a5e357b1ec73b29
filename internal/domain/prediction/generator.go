package prediction

import (
	"math"
	"math/rand/v2"
	"time"
)

// Generator produces synthetic forecast series and derives insights from them.
// It keeps no state between calls beyond its injected dependencies.
type Generator struct {
	src    Source
	now    func() time.Time
	loc    *time.Location
	tuning Tuning
}

// Option customises a Generator.
type Option func(*Generator)

// WithSource swaps the random source, typically for deterministic tests.
func WithSource(src Source) Option {
	return func(g *Generator) {
		if src != nil {
			g.src = src
		}
	}
}

// WithClock overrides the notion of "today".
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLocation sets the calendar used for day and hour boundaries.
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// WithTuning replaces the default constants.
func WithTuning(t Tuning) Option {
	return func(g *Generator) {
		g.tuning = t
	}
}

// NewGenerator builds a generator backed by the process-wide random source.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		src:    globalSource{},
		now:    time.Now,
		loc:    time.Local,
		tuning: DefaultTuning(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewSeededSource returns a reproducible source. It is not safe for concurrent use.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// GenerateSeries performs a clamped random walk from startValue.
// volatility scales the per-step noise and trend in [-1, 1] biases its direction.
func (g *Generator) GenerateSeries(startValue, volatility, trend float64, mode Mode) Series {
	today := g.now().In(g.loc)
	step := g.tuning.step(mode)
	current := startValue

	if mode == ModeTomorrow {
		midnight := g.at(today.AddDate(0, 0, 1), 0)
		series := make(Series, 0, hoursPerDay)
		for hour := 0; hour < hoursPerDay; hour++ {
			current = g.advance(current, volatility, trend, step, g.tuning.hourBias(hour))
			h := hour
			series = append(series, SamplePoint{
				Timestamp: midnight.Add(time.Duration(hour) * time.Hour),
				Value:     roundScore(current),
				HourOfDay: &h,
			})
		}
		return series
	}

	series := make(Series, 0, forecastDays*len(periods))
	for dayIndex := 0; dayIndex < forecastDays; dayIndex++ {
		day := today.AddDate(0, 0, dayIndex)
		for _, slot := range periods {
			current = g.advance(current, volatility, trend, step, g.tuning.PeriodBias[slot.period])
			d := dayIndex
			series = append(series, SamplePoint{
				Timestamp: g.at(day, slot.hour),
				Value:     roundScore(current),
				DayIndex:  &d,
				Period:    slot.period,
			})
		}
	}
	return series
}

func (g *Generator) advance(current, volatility, trend float64, step StepTuning, bias float64) float64 {
	noise := (g.src.Float64()*2 - 1) * volatility * step.NoiseScale
	magnitude := step.TrendMin + g.src.Float64()*(step.TrendMax-step.TrendMin)
	return clamp(current + noise + trend*magnitude + bias)
}

// at is wall-clock time on day. Hourly points are offset from midnight instead,
// since a DST gap would fold two wall-clock hours onto one instant.
func (g *Generator) at(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, g.loc)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return minScore
	}
	return math.Max(minScore, math.Min(maxScore, v))
}

func roundScore(v float64) int {
	return int(math.Round(clamp(v)))
}
