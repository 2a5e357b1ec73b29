package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// monday is 2026-10-12, far enough from Friday that the weekend rule stays quiet.
var monday = time.Date(2026, time.October, 12, 9, 0, 0, 0, time.UTC)

func weekSeries(base int, overrides map[int]int) Series {
	series := make(Series, 0, 21)
	for i := 0; i < 21; i++ {
		v := base
		if o, ok := overrides[i]; ok {
			v = o
		}
		d := i / 3
		series = append(series, SamplePoint{
			Timestamp: monday.AddDate(0, 0, d),
			Value:     v,
			DayIndex:  &d,
			Period:    periods[i%3].period,
		})
	}
	return series
}

func daySeries(base int, overrides map[int]int) Series {
	series := make(Series, 0, 24)
	for hour := 0; hour < 24; hour++ {
		v := base
		if o, ok := overrides[hour]; ok {
			v = o
		}
		h := hour
		series = append(series, SamplePoint{
			Timestamp: time.Date(2026, time.October, 13, hour, 0, 0, 0, time.UTC),
			Value:     v,
			HourOfDay: &h,
		})
	}
	return series
}

func flatWeek() map[Metric]Series {
	return map[Metric]Series{
		MetricHealth:    weekSeries(50, nil),
		MetricEnergy:    weekSeries(50, nil),
		MetricCognitive: weekSeries(50, nil),
		MetricStress:    weekSeries(50, nil),
	}
}

func titles(insights []Insight) []string {
	out := make([]string, len(insights))
	for i, in := range insights {
		out[i] = in.Title
	}
	return out
}

func findInsight(t *testing.T, insights []Insight, title string) Insight {
	t.Helper()
	for _, in := range insights {
		if in.Title == title {
			return in
		}
	}
	t.Fatalf("insight %q not found in %v", title, titles(insights))
	return Insight{}
}

func TestDeriveInsights_FlatWeekFallsBackToStable(t *testing.T) {
	gen := newTestGenerator(fixedSource(0.5), monday)

	insights := gen.DeriveInsights(flatWeek(), ModeSevenDays)
	require.Len(t, insights, 1)
	require.Equal(t, "Stable Health Metrics", insights[0].Title)
	require.Equal(t, SeverityNeutral, insights[0].Severity)
	require.Contains(t, insights[0].Description, "over the next 7 days")
}

func TestDeriveInsights_TomorrowWithoutSeriesFallsBack(t *testing.T) {
	gen := newTestGenerator(fixedSource(0.5), monday)

	insights := gen.DeriveInsights(map[Metric]Series{}, ModeTomorrow)
	require.Len(t, insights, 1)
	require.Contains(t, insights[0].Description, "throughout tomorrow")
}

func TestDeriveInsights_HealthTrend(t *testing.T) {
	gen := newTestGenerator(fixedSource(0.5), monday)

	series := flatWeek()
	series[MetricHealth] = weekSeries(50, map[int]int{20: 60})
	improving := findInsight(t, gen.DeriveInsights(series, ModeSevenDays), "Improving Health Trend")
	require.Equal(t, SeverityPositive, improving.Severity)

	series[MetricHealth] = weekSeries(50, map[int]int{20: 45})
	declining := findInsight(t, gen.DeriveInsights(series, ModeSevenDays), "Declining Health Trend")
	require.Equal(t, SeverityNegative, declining.Severity)

	// A change of exactly the threshold is not a trend.
	series[MetricHealth] = weekSeries(50, map[int]int{20: 53})
	require.Equal(t, []string{"Stable Health Metrics"}, titles(gen.DeriveInsights(series, ModeSevenDays)))
}

func TestDeriveInsights_FallingStressIsPositive(t *testing.T) {
	gen := newTestGenerator(fixedSource(0.5), monday)

	series := flatWeek()
	series[MetricStress] = weekSeries(60, map[int]int{20: 40})
	insights := gen.DeriveInsights(series, ModeSevenDays)

	improving := findInsight(t, insights, "Improving Stress Levels")
	require.Equal(t, SeverityPositive, improving.Severity)
	require.NotContains(t, titles(insights), "Stress Alert")
}

func TestDeriveInsights_RisingStressIsWarning(t *testing.T) {
	gen := newTestGenerator(fixedSource(0.5), monday)

	series := flatWeek()
	series[MetricStress] = weekSeries(40, map[int]int{20: 60})
	alert := findInsight(t, gen.DeriveInsights(series, ModeSevenDays), "Stress Alert")
	require.Equal(t, SeverityWarning, alert.Severity)
}

func TestDeriveInsights_CognitiveSpread(t *testing.T) {
	gen := newTestGenerator(fixedSource(0.5), monday)

	series := flatWeek()
	series[MetricCognitive] = weekSeries(50, map[int]int{7: 59})
	fluct := findInsight(t, gen.DeriveInsights(series, ModeSevenDays), "Cognitive Fluctuations")
	require.Equal(t, SeverityNeutral, fluct.Severity)

	series[MetricCognitive] = weekSeries(50, map[int]int{7: 58})
	require.NotContains(t, titles(gen.DeriveInsights(series, ModeSevenDays)), "Cognitive Fluctuations")
}

func TestDeriveInsights_Weekend(t *testing.T) {
	wednesday := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	gen := newTestGenerator(fixedSource(0.5), wednesday)

	// Wednesday is two days from Friday, so index 6 is inspected.
	series := flatWeek()
	series[MetricStress] = weekSeries(50, map[int]int{6: 52})
	warn := findInsight(t, gen.DeriveInsights(series, ModeSevenDays), "Weekend Stress")
	require.Equal(t, SeverityWarning, warn.Severity)

	series[MetricStress] = weekSeries(50, map[int]int{6: 40})
	relax := findInsight(t, gen.DeriveInsights(series, ModeSevenDays), "Relaxing Weekend")
	require.Equal(t, SeverityPositive, relax.Severity)

	series[MetricStress] = weekSeries(50, map[int]int{6: 46})
	require.Equal(t, []string{"Stable Health Metrics"}, titles(gen.DeriveInsights(series, ModeSevenDays)))

	early := newTestGenerator(fixedSource(0.5), monday)
	series[MetricStress] = weekSeries(50, map[int]int{6: 60})
	require.NotContains(t, titles(early.DeriveInsights(series, ModeSevenDays)), "Weekend Stress")
}

func TestDeriveInsights_TomorrowPeaks(t *testing.T) {
	gen := newTestGenerator(fixedSource(0.5), monday)

	series := map[Metric]Series{
		MetricEnergy:    daySeries(60, map[int]int{13: 90}),
		MetricStress:    daySeries(40, map[int]int{17: 70}),
		MetricCognitive: daySeries(70, map[int]int{10: 88}),
	}
	insights := gen.DeriveInsights(series, ModeTomorrow)

	require.Equal(t, []string{"Peak Energy Time", "High Stress Period", "Optimal Focus Time"}, titles(insights))
	require.Contains(t, insights[0].Description, "13:00")
	require.Contains(t, insights[1].Description, "17:00")
	require.Contains(t, insights[2].Description, "10:00")
}

func TestDeriveInsights_PeakTiesPickEarliestHour(t *testing.T) {
	gen := newTestGenerator(fixedSource(0.5), monday)

	series := map[Metric]Series{
		MetricEnergy: daySeries(60, map[int]int{9: 80, 15: 80}),
	}
	insights := gen.DeriveInsights(series, ModeTomorrow)
	require.Contains(t, insights[0].Description, "9:00")
}

func TestDeriveInsights_AfternoonDip(t *testing.T) {
	gen := newTestGenerator(fixedSource(0.5), monday)

	dip := map[Metric]Series{
		MetricEnergy: daySeries(70, map[int]int{14: 60}),
	}
	insights := gen.DeriveInsights(dip, ModeTomorrow)
	require.Equal(t, []string{"Peak Energy Time", "Afternoon Energy Dip"}, titles(insights))
	require.Equal(t, SeverityWarning, insights[1].Severity)

	shallow := map[Metric]Series{
		MetricEnergy: daySeries(70, map[int]int{14: 66}),
	}
	require.NotContains(t, titles(gen.DeriveInsights(shallow, ModeTomorrow)), "Afternoon Energy Dip")
}

func TestDeriveInsights_CustomThresholds(t *testing.T) {
	tuning := DefaultTuning()
	tuning.Thresholds.HealthChange = 15
	gen := NewGenerator(
		WithSource(fixedSource(0.5)),
		WithClock(func() time.Time { return monday }),
		WithLocation(time.UTC),
		WithTuning(tuning),
	)

	series := flatWeek()
	series[MetricHealth] = weekSeries(50, map[int]int{20: 60})
	require.NotContains(t, titles(gen.DeriveInsights(series, ModeSevenDays)), "Improving Health Trend")
}
