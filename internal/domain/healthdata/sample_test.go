package healthdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestGenerateSampleBounds(t *testing.T) {
	now := time.Date(2026, 10, 14, 7, 0, 0, 0, time.UTC)

	low := GenerateSample("", fixedRand(0), now)
	require.Equal(t, DefaultDeviceID, low.DeviceID)
	require.Equal(t, 3000, low.Steps)
	require.Equal(t, 60, low.HeartRate)
	require.Equal(t, 5.0, low.Sleep.TotalSleepHours)
	require.Equal(t, 200.0, low.ActiveEnergyBurned)
	require.Equal(t, 95.0, low.AdditionalMetrics.BloodOxygen)
	require.Equal(t, 35.5, low.AdditionalMetrics.SkinTemperature)
	require.Equal(t, 20.0, low.AdditionalMetrics.StressLevel)
	require.Equal(t, now.Add(-8*time.Hour).UnixMilli(), low.Sleep.InBedTime)
	require.Equal(t, now.Add(-30*time.Minute).UnixMilli(), low.Sleep.OutBedTime)

	high := GenerateSample("watch", fixedRand(0.9999), now)
	require.Equal(t, 7999, high.Steps)
	require.Equal(t, 89, high.HeartRate)
	require.Equal(t, 98.0, high.AdditionalMetrics.BloodOxygen)
	require.Equal(t, 79.0, high.AdditionalMetrics.StressLevel)

	require.NoError(t, Validate(low))
	require.NoError(t, Validate(high))
}
