package prediction

import (
	"errors"
	"fmt"
)

// HourBand applies Bias to every hour strictly below UntilHour not claimed by an earlier band.
type HourBand struct {
	UntilHour int     `yaml:"untilHour" json:"untilHour"`
	Bias      float64 `yaml:"bias" json:"bias"`
}

// StepTuning shapes one mode of the random walk.
type StepTuning struct {
	NoiseScale float64 `yaml:"noiseScale" json:"noiseScale"`
	TrendMin   float64 `yaml:"trendMin" json:"trendMin"`
	TrendMax   float64 `yaml:"trendMax" json:"trendMax"`
}

// Thresholds hold the insight rule cut-offs.
type Thresholds struct {
	HealthChange     int `yaml:"healthChange" json:"healthChange"`
	StressChange     int `yaml:"stressChange" json:"stressChange"`
	CognitiveSpread  int `yaml:"cognitiveSpread" json:"cognitiveSpread"`
	AfternoonDip     int `yaml:"afternoonDip" json:"afternoonDip"`
	WeekendRelief    int `yaml:"weekendRelief" json:"weekendRelief"`
	WeekendLookahead int `yaml:"weekendLookahead" json:"weekendLookahead"`
}

// Tuning collects every constant used by the generator and the insight rules.
type Tuning struct {
	Tomorrow   StepTuning         `yaml:"tomorrow" json:"tomorrow"`
	SevenDays  StepTuning         `yaml:"sevenDays" json:"sevenDays"`
	HourBands  []HourBand         `yaml:"hourBands" json:"hourBands"`
	PeriodBias map[Period]float64 `yaml:"periodBias" json:"periodBias"`
	Thresholds Thresholds         `yaml:"thresholds" json:"thresholds"`
}

// DefaultTuning returns the values the dashboard has always shipped with.
func DefaultTuning() Tuning {
	return Tuning{
		Tomorrow:  StepTuning{NoiseScale: 1.0, TrendMin: 0.1, TrendMax: 0.3},
		SevenDays: StepTuning{NoiseScale: 0.7, TrendMin: 0.15, TrendMax: 0.4},
		HourBands: []HourBand{
			{UntilHour: 6, Bias: -0.5},
			{UntilHour: 11, Bias: 0.3},
			{UntilHour: 15, Bias: 0.1},
			{UntilHour: 20, Bias: 0.4},
			{UntilHour: 24, Bias: -0.3},
		},
		PeriodBias: map[Period]float64{
			PeriodMorning:   -0.2,
			PeriodAfternoon: 0.3,
			PeriodEvening:   -0.1,
		},
		Thresholds: Thresholds{
			HealthChange:     3,
			StressChange:     5,
			CognitiveSpread:  8,
			AfternoonDip:     5,
			WeekendRelief:    5,
			WeekendLookahead: 3,
		},
	}
}

// Validate rejects tunings that would break the walk's invariants.
func (t Tuning) Validate() error {
	for name, step := range map[string]StepTuning{"tomorrow": t.Tomorrow, "sevenDays": t.SevenDays} {
		if step.NoiseScale < 0 {
			return fmt.Errorf("%s.noiseScale must be non-negative", name)
		}
		if step.TrendMax < step.TrendMin {
			return fmt.Errorf("%s.trendMax must not be below trendMin", name)
		}
	}
	if len(t.HourBands) == 0 {
		return errors.New("hourBands cannot be empty")
	}
	prev := 0
	for _, band := range t.HourBands {
		if band.UntilHour <= prev || band.UntilHour > hoursPerDay {
			return errors.New("hourBands must be strictly increasing and end at or before 24")
		}
		prev = band.UntilHour
	}
	if prev != hoursPerDay {
		return errors.New("hourBands must cover every hour up to 24")
	}
	if t.Thresholds.WeekendLookahead < 0 {
		return errors.New("thresholds.weekendLookahead must be non-negative")
	}
	return nil
}

func (t Tuning) step(mode Mode) StepTuning {
	if mode == ModeTomorrow {
		return t.Tomorrow
	}
	return t.SevenDays
}

func (t Tuning) hourBias(hour int) float64 {
	for _, band := range t.HourBands {
		if hour < band.UntilHour {
			return band.Bias
		}
	}
	return 0
}
