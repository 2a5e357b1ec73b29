package prediction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamsFor(t *testing.T) {
	require.Equal(t, Params{Volatility: 2, Trend: 1}, ParamsFor(MetricHealth, BehaviorImproving))
	require.Equal(t, Params{Volatility: 4, Trend: -1}, ParamsFor(MetricEnergy, BehaviorDeclining))
	require.Equal(t, Params{Volatility: 3, Trend: 0}, ParamsFor(MetricCognitive, BehaviorStable))
	// Better stress management lowers stress.
	require.Equal(t, Params{Volatility: 5, Trend: -1}, ParamsFor(MetricStress, BehaviorImproving))
}

func TestParseBehaviorLabel(t *testing.T) {
	label, ok := ParseBehaviorLabel("")
	require.True(t, ok)
	require.Equal(t, BehaviorStable, label)

	label, ok = ParseBehaviorLabel("Improving")
	require.True(t, ok)
	require.Equal(t, BehaviorImproving, label)

	_, ok = ParseBehaviorLabel("great")
	require.False(t, ok)
}

func TestScores(t *testing.T) {
	scores := DefaultScores()
	require.True(t, scores.Valid())
	require.Equal(t, 71, scores.Overall())
	require.Equal(t, 42, scores.Value(MetricStress))

	scores.Energy = 101
	require.False(t, scores.Valid())
}

func TestClassifyScore(t *testing.T) {
	cases := []struct {
		metric Metric
		value  int
		want   Band
	}{
		{MetricHealth, 85, BandExcellent},
		{MetricHealth, 60, BandGood},
		{MetricEnergy, 45, BandFair},
		{MetricCognitive, 10, BandPoor},
		{MetricStress, 20, BandGood},
		{MetricStress, 50, BandFair},
		{MetricStress, 75, BandPoor},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ClassifyScore(tc.metric, tc.value), "%s=%d", tc.metric, tc.value)
	}
}

func TestTrend(t *testing.T) {
	falling := weekSeries(60, map[int]int{20: 45})

	stress := Trend(MetricStress, falling)
	require.Equal(t, TrendSummary{Start: 60, End: 45, Difference: 15, Rising: false, Favorable: true}, stress)

	health := Trend(MetricHealth, falling)
	require.False(t, health.Favorable)

	require.Equal(t, TrendSummary{}, Trend(MetricHealth, nil))
}

func TestAvatarState(t *testing.T) {
	require.Equal(t, "poor", AvatarState(30, 20))
	require.Equal(t, "excellent", AvatarState(85, 90))
	require.Equal(t, "stressed", AvatarState(60, 75))
	require.Equal(t, "average", AvatarState(60, 40))
}
