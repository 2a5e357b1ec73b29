package healthdata

import "time"

// EventNewHealthData is published after every successful upload.
const EventNewHealthData = "new_health_data"

// Sleep summarises the previous night.
type Sleep struct {
	TotalSleepHours float64 `json:"total_sleep_hours"`
	InBedTime       int64   `json:"in_bed_time"`
	OutBedTime      int64   `json:"out_bed_time"`
	TimeInBed       float64 `json:"time_in_bed"`
}

// AdditionalMetrics holds the optional wearable readings.
type AdditionalMetrics struct {
	BloodOxygen     float64 `json:"blood_oxygen"`
	SkinTemperature float64 `json:"skin_temperature"`
	HRV             float64 `json:"hrv"`
	RespiratoryRate float64 `json:"respiratory_rate"`
	StressLevel     float64 `json:"stress_level"`
}

// Sample is the payload a device uploads.
type Sample struct {
	DeviceID           string            `json:"device_id"`
	Timestamp          time.Time         `json:"timestamp"`
	Steps              int               `json:"steps"`
	HeartRate          int               `json:"heart_rate"`
	Sleep              Sleep             `json:"sleep"`
	ActiveEnergyBurned float64           `json:"active_energy_burned"`
	AdditionalMetrics  AdditionalMetrics `json:"additional_metrics"`
}

// Record is a persisted upload.
type Record struct {
	ID        string    `json:"sync_id"`
	UserID    int64     `json:"user_id"`
	Sample    Sample    `json:"data"`
	ObjectKey string    `json:"object_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDataEvent is the payload pushed to connected dashboards.
type NewDataEvent struct {
	SyncID    string    `json:"sync_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Data      Sample    `json:"data"`
}

// Config drives the health data service.
type Config struct {
	DefaultListLimit int
	MaxListLimit     int
}
