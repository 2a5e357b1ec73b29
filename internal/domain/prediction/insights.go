package prediction

import (
	"fmt"
	"time"
)

const (
	morningHour   = 8
	afternoonHour = 14
	eveningHour   = 20
)

// DeriveInsights scans the per-metric series for mode and returns insights in rule order.
// When no rule fires a single neutral "Stable Health Metrics" insight is returned.
func (g *Generator) DeriveInsights(series map[Metric]Series, mode Mode) []Insight {
	var insights []Insight
	if mode == ModeTomorrow {
		insights = g.tomorrowInsights(series)
	} else {
		insights = g.weekInsights(series)
	}
	if len(insights) == 0 {
		insights = append(insights, stableInsight(mode))
	}
	return insights
}

func (g *Generator) weekInsights(series map[Metric]Series) []Insight {
	th := g.tuning.Thresholds
	insights := make([]Insight, 0, 4)

	if health := series[MetricHealth]; len(health) > 0 {
		diff := lastValue(health) - health[0].Value
		switch {
		case diff > th.HealthChange:
			insights = append(insights, Insight{
				Title:       "Improving Health Trend",
				Description: "Your health metrics are projected to improve over the next week. Continue your current routine to maintain this positive trajectory.",
				Severity:    SeverityPositive,
			})
		case diff < -th.HealthChange:
			insights = append(insights, Insight{
				Title:       "Declining Health Trend",
				Description: "Your health metrics may decline slightly in the coming days. Consider focusing on nutrition and rest.",
				Severity:    SeverityNegative,
			})
		}
	}

	stress := series[MetricStress]
	if len(stress) > 0 {
		diff := lastValue(stress) - stress[0].Value
		// Lower stress is the favourable direction.
		switch {
		case diff > th.StressChange:
			insights = append(insights, Insight{
				Title:       "Stress Alert",
				Description: "Your stress levels are likely to rise in the next 7 days. Pre-emptive stress management techniques are recommended.",
				Severity:    SeverityWarning,
			})
		case diff < -th.StressChange:
			insights = append(insights, Insight{
				Title:       "Improving Stress Levels",
				Description: "Your stress levels are projected to decrease over the next week. Your current approach is working well.",
				Severity:    SeverityPositive,
			})
		}
	}

	if cognitive := series[MetricCognitive]; len(cognitive) > 0 {
		lo, hi := valueRange(cognitive)
		if hi-lo > th.CognitiveSpread {
			insights = append(insights, Insight{
				Title:       "Cognitive Fluctuations",
				Description: "Your cognitive function may fluctuate considerably over the next week. Plan focused work during projected peak days.",
				Severity:    SeverityNeutral,
			})
		}
	}

	if len(stress) > 0 {
		if insight, ok := g.weekendInsight(stress, th); ok {
			insights = append(insights, insight)
		}
	}
	return insights
}

func (g *Generator) weekendInsight(stress Series, th Thresholds) (Insight, bool) {
	daysToFriday := int(time.Friday - g.now().In(g.loc).Weekday())
	if daysToFriday < 0 || daysToFriday >= th.WeekendLookahead {
		return Insight{}, false
	}
	idx := min(daysToFriday*len(periods), len(stress)-1)
	start := stress[0].Value
	weekend := stress[idx].Value
	switch {
	case weekend > start:
		return Insight{
			Title:       "Weekend Stress",
			Description: "Stress levels may rise over the weekend. Consider scheduling some relaxation activities.",
			Severity:    SeverityWarning,
		}, true
	case weekend < start-th.WeekendRelief:
		return Insight{
			Title:       "Relaxing Weekend",
			Description: "Your stress levels are projected to decrease over the weekend. Great opportunity to recharge.",
			Severity:    SeverityPositive,
		}, true
	}
	return Insight{}, false
}

func (g *Generator) tomorrowInsights(series map[Metric]Series) []Insight {
	th := g.tuning.Thresholds
	insights := make([]Insight, 0, 4)

	if energy := series[MetricEnergy]; len(energy) > 0 {
		insights = append(insights, Insight{
			Title:       "Peak Energy Time",
			Description: fmt.Sprintf("Your energy levels will likely peak around %d:00 tomorrow. Schedule important tasks around this time for optimal performance.", peakHour(energy)),
			Severity:    SeverityPositive,
		})
		morning := valueAtHour(energy, morningHour)
		afternoon := valueAtHour(energy, afternoonHour)
		evening := valueAtHour(energy, eveningHour)
		if afternoon < morning-th.AfternoonDip && afternoon < evening-th.AfternoonDip {
			insights = append(insights, Insight{
				Title:       "Afternoon Energy Dip",
				Description: "Expect a natural energy dip in the afternoon. Plan for a short break or light physical activity to counteract it.",
				Severity:    SeverityWarning,
			})
		}
	}

	if stress := series[MetricStress]; len(stress) > 0 {
		insights = append(insights, Insight{
			Title:       "High Stress Period",
			Description: fmt.Sprintf("Your stress levels may peak around %d:00. Consider scheduling breathing exercises or a short break around this time.", peakHour(stress)),
			Severity:    SeverityWarning,
		})
	}

	if cognitive := series[MetricCognitive]; len(cognitive) > 0 {
		insights = append(insights, Insight{
			Title:       "Optimal Focus Time",
			Description: fmt.Sprintf("Your cognitive performance will likely be highest at %d:00. Plan deep work or complex tasks during this period.", peakHour(cognitive)),
			Severity:    SeverityPositive,
		})
	}
	return insights
}

func stableInsight(mode Mode) Insight {
	horizon := "throughout tomorrow"
	if mode != ModeTomorrow {
		horizon = "over the next 7 days"
	}
	return Insight{
		Title:       "Stable Health Metrics",
		Description: "Your health metrics are projected to remain relatively stable " + horizon + ".",
		Severity:    SeverityNeutral,
	}
}

func lastValue(s Series) int {
	return s[len(s)-1].Value
}

func valueRange(s Series) (lo, hi int) {
	lo, hi = s[0].Value, s[0].Value
	for _, p := range s[1:] {
		lo = min(lo, p.Value)
		hi = max(hi, p.Value)
	}
	return lo, hi
}

// peakHour returns the hour of the first point holding the maximum value.
func peakHour(s Series) int {
	best := 0
	for i, p := range s {
		if p.Value > s[best].Value {
			best = i
		}
	}
	return s[best].Hour()
}

func valueAtHour(s Series, hour int) int {
	for _, p := range s {
		if p.HourOfDay != nil && *p.HourOfDay == hour {
			return p.Value
		}
	}
	return s[0].Value
}
