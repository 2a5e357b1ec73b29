package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	Storage    StorageConfig    `yaml:"storage"`
	Events     EventsConfig     `yaml:"events"`
	Health     HealthConfig     `yaml:"health"`
	Prediction PredictionConfig `yaml:"prediction"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures replays of GET/HEAD requests that fail with a 5xx.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig controls token issuance.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
}

// DatabaseConfig selects the user and health record backend.
type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlitePath"`
	MaxConns   int32  `yaml:"maxConns"`
	MinConns   int32  `yaml:"minConns"`
}

// CacheConfig contains connection information for Valkey.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// StorageConfig selects where raw health payloads are kept.
type StorageConfig struct {
	Driver    string `yaml:"driver"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// EventsConfig selects the event bus.
// Every instance must see every event, so Kafka consumer groups are suffixed
// with InstanceID and Valkey delivers over pub/sub.
type EventsConfig struct {
	Driver     string   `yaml:"driver"`
	Channel    string   `yaml:"channel"`
	Brokers    []string `yaml:"brokers"`
	Topic      string   `yaml:"topic"`
	GroupID    string   `yaml:"groupId"`
	InstanceID string   `yaml:"instanceId"`
}

// HealthConfig bounds history listings.
type HealthConfig struct {
	DefaultListLimit int `yaml:"defaultListLimit"`
	MaxListLimit     int `yaml:"maxListLimit"`
}

// PredictionConfig drives the forecast generator.
type PredictionConfig struct {
	ForecastTTL   time.Duration     `yaml:"forecastTtl"`
	DefaultScores prediction.Scores `yaml:"defaultScores"`
	Tuning        prediction.Tuning `yaml:"tuning"`
}

// DashboardConfig holds the model accuracy baseline.
type DashboardConfig struct {
	ModelAccuracies map[string]int `yaml:"modelAccuracies"`
}

// WebSocketConfig controls the realtime hub.
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxClients   int           `yaml:"maxClients"`
}

// Database drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageMinio  = "minio"
)

// Event bus drivers.
const (
	EventsInProcess = "inprocess"
	EventsValkey    = "valkey"
	EventsKafka     = "kafka"
)

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.RefreshTokenTTL = parsed
		}
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Database.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("DATABASE_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Database.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("STORAGE_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("STORAGE_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("STORAGE_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("STORAGE_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("EVENTS_DRIVER"); v != "" {
		cfg.Events.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("EVENTS_CHANNEL"); v != "" {
		cfg.Events.Channel = v
	}
	if v := os.Getenv("EVENTS_BROKERS"); v != "" {
		cfg.Events.Brokers = splitList(v)
	}
	if v := os.Getenv("EVENTS_TOPIC"); v != "" {
		cfg.Events.Topic = v
	}
	if v := os.Getenv("EVENTS_GROUP_ID"); v != "" {
		cfg.Events.GroupID = v
	}
	if v := os.Getenv("EVENTS_INSTANCE_ID"); v != "" {
		cfg.Events.InstanceID = v
	}
	if v := os.Getenv("PREDICTION_FORECAST_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Prediction.ForecastTTL = parsed
		}
	}
	if v := os.Getenv("WS_PING_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.WebSocket.PingInterval = parsed
		}
	}
	if v := os.Getenv("WS_MAX_CLIENTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.WebSocket.MaxClients = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/ws",
				},
			},
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Auth: AuthConfig{
			Secret:          "dev-secret-change-me",
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Database: DatabaseConfig{
			Driver:     DriverMemory,
			SQLitePath: "data/twin.db",
			MaxConns:   4,
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
			Bucket: "health-data",
			Region: "us-east-1",
		},
		Events: EventsConfig{
			Driver:  EventsInProcess,
			Channel: "twin:events",
			Topic:   "twin.events",
			GroupID: "twin-dashboard",
		},
		Health: HealthConfig{
			DefaultListLimit: 20,
			MaxListLimit:     100,
		},
		Prediction: PredictionConfig{
			ForecastTTL:   6 * time.Hour,
			DefaultScores: prediction.DefaultScores(),
			Tuning:        prediction.DefaultTuning(),
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			WriteTimeout: 10 * time.Second,
			MaxClients:   100,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	switch c.Database.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Database.SQLitePath) == "" {
			return errors.New("database.sqlitePath cannot be empty for sqlite")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("database.dsn cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when cache is enabled")
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageMinio:
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			return errors.New("storage.endpoint and storage.bucket are required for minio")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	switch c.Events.Driver {
	case EventsInProcess:
	case EventsValkey:
		if !c.Cache.Enabled {
			return errors.New("events.driver valkey requires cache.enabled")
		}
	case EventsKafka:
		if len(c.Events.Brokers) == 0 {
			return errors.New("events.brokers cannot be empty for kafka")
		}
	default:
		return fmt.Errorf("events.driver %q is not supported", c.Events.Driver)
	}
	if c.Health.DefaultListLimit <= 0 || c.Health.MaxListLimit < c.Health.DefaultListLimit {
		return errors.New("health list limits must be positive and max >= default")
	}
	if c.Prediction.ForecastTTL < 0 {
		return errors.New("prediction.forecastTtl cannot be negative")
	}
	if !c.Prediction.DefaultScores.Valid() {
		return errors.New("prediction.defaultScores must be between 0 and 100")
	}
	if err := c.Prediction.Tuning.Validate(); err != nil {
		return fmt.Errorf("prediction.tuning: %w", err)
	}
	for system, acc := range c.Dashboard.ModelAccuracies {
		if acc < 0 || acc > 100 {
			return fmt.Errorf("dashboard.modelAccuracies.%s must be between 0 and 100", system)
		}
	}
	if c.WebSocket.PingInterval <= 0 {
		return errors.New("websocket.pingInterval must be positive")
	}
	if c.WebSocket.MaxClients <= 0 {
		return errors.New("websocket.maxClients must be positive")
	}
	return nil
}
