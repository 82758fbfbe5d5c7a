package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. BOOKINGS_DATABASE_DSN.
const EnvPrefix = "BOOKINGS"

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Stays      StaysConfig      `yaml:"stays"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool" envconfig:"WORKER_POOL"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key" envconfig:"VAPID_PUBLIC_KEY"`
	PrivateKey string `yaml:"vapid_private_key" envconfig:"VAPID_PRIVATE_KEY"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	Environment     string   `yaml:"environment"`
	APIKey          string   `yaml:"api_key" envconfig:"API_KEY"`
	RequestIPHeader string   `yaml:"request_ip_header" envconfig:"REQUEST_IP_HEADER"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec" envconfig:"RATE_LIMIT_PER_SEC"`
	RateLimitBurst  int      `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds" envconfig:"CACHE_TTL_SECONDS"`
	CORSOrigins     []string `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns           int    `yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" envconfig:"CONN_MAX_LIFETIME_MINUTES"`
	LogLevel               string `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// StaysConfig holds the upstream booking API and sync schedule configuration.
type StaysConfig struct {
	Enabled         bool          `yaml:"enabled"`
	BaseURL         string        `yaml:"base_url" envconfig:"BASE_URL"`
	ClientID        string        `yaml:"client_id" envconfig:"CLIENT_ID"`
	ClientSecret    string        `yaml:"client_secret" envconfig:"CLIENT_SECRET"`
	Cron            string        `yaml:"cron"`
	IntervalSeconds int           `yaml:"interval_seconds" envconfig:"INTERVAL_SECONDS"`
	Interval        time.Duration `yaml:"-" ignored:"true"`
	HTTPProxy       string        `yaml:"http_proxy" envconfig:"HTTP_PROXY"`
	PageSize        int           `yaml:"page_size" envconfig:"PAGE_SIZE"`
	PastDays        int           `yaml:"past_days" envconfig:"PAST_DAYS"`
	FutureDays      int           `yaml:"future_days" envconfig:"FUTURE_DAYS"`
	TimeoutSeconds  int           `yaml:"timeout_seconds" envconfig:"TIMEOUT_SECONDS"`
	MaxRetries      int           `yaml:"max_retries" envconfig:"MAX_RETRIES"`
	RequestsPerSec  float64       `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC"`
}

// DashboardConfig controls the aggregation windows and presentation.
type DashboardConfig struct {
	Timezone       string            `yaml:"timezone"`
	PastDays       int               `yaml:"past_days" envconfig:"PAST_DAYS"`
	FutureDays     int               `yaml:"future_days" envconfig:"FUTURE_DAYS"`
	PlatformColors map[string]string `yaml:"platform_colors" envconfig:"PLATFORM_COLORS"`
	DefaultColor   string            `yaml:"default_color" envconfig:"DEFAULT_COLOR"`
}

// Load reads the configuration from the given path, then applies .env and
// environment overrides. An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}

	// A missing .env is not an error.
	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Stays.IntervalSeconds <= 0 {
		cfg.Stays.IntervalSeconds = 600
	}
	cfg.Stays.Interval = time.Duration(cfg.Stays.IntervalSeconds) * time.Second
	if cfg.Stays.PageSize <= 0 {
		cfg.Stays.PageSize = 20
	}
	if cfg.Stays.PastDays <= 0 {
		cfg.Stays.PastDays = 365
	}
	if cfg.Stays.FutureDays <= 0 {
		cfg.Stays.FutureDays = 365
	}
	if cfg.Stays.TimeoutSeconds <= 0 {
		cfg.Stays.TimeoutSeconds = 30
	}
	if cfg.Stays.MaxRetries <= 0 {
		cfg.Stays.MaxRetries = 3
	}
	if cfg.Stays.RequestsPerSec <= 0 {
		cfg.Stays.RequestsPerSec = 5
	}

	if cfg.Dashboard.Timezone == "" {
		cfg.Dashboard.Timezone = "America/Sao_Paulo"
	}
	if cfg.Dashboard.PastDays <= 0 {
		cfg.Dashboard.PastDays = 365
	}
	if cfg.Dashboard.FutureDays <= 0 {
		cfg.Dashboard.FutureDays = 365
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}

// Validate reports settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Stays.Enabled && c.Stays.BaseURL == "" {
		return errors.New("stays.base_url is required when stays sync is enabled")
	}
	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		return fmt.Errorf("invalid dashboard.timezone %q: %w", c.Dashboard.Timezone, err)
	}
	return nil
}

// Location returns the dashboard timezone. Load has already validated it.
func (c *DashboardConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
