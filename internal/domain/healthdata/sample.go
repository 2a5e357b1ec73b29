package healthdata

import (
	"math"
	"math/rand/v2"
	"time"
)

// DefaultDeviceID identifies samples generated without an explicit device.
const DefaultDeviceID = "test-device-001"

// RandomSource supplies uniform numbers in [0, 1).
type RandomSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// GenerateSample fabricates a plausible upload for demos and tests. A nil rng uses the global source.
func GenerateSample(deviceID string, rng RandomSource, now time.Time) Sample {
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}
	if rng == nil {
		rng = globalRand{}
	}
	// intIn returns an integer in [lo, lo+span).
	intIn := func(lo, span float64) float64 {
		return math.Floor(rng.Float64()*span) + lo
	}
	return Sample{
		DeviceID:  deviceID,
		Timestamp: now.UTC(),
		Steps:     int(intIn(3000, 5000)),
		HeartRate: int(intIn(60, 30)),
		Sleep: Sleep{
			TotalSleepHours: rng.Float64()*3 + 5,
			InBedTime:       now.Add(-8 * time.Hour).UnixMilli(),
			OutBedTime:      now.Add(-30 * time.Minute).UnixMilli(),
			TimeInBed:       rng.Float64()*3 + 6,
		},
		ActiveEnergyBurned: intIn(200, 300),
		AdditionalMetrics: AdditionalMetrics{
			BloodOxygen:     intIn(95, 4),
			SkinTemperature: intIn(35.5, 3),
			HRV:             intIn(30, 20),
			RespiratoryRate: intIn(14, 4),
			StressLevel:     intIn(20, 60),
		},
	}
}
