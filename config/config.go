package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Serial   SerialConfig   `yaml:"serial"`
	Sync     SyncConfig     `yaml:"sync"`
	Erp      ErpConfig      `yaml:"erp"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// SerialConfig holds the weight-indicator behavior fixed for the process
// lifetime. Per-connection parameters (port, baud rate, ...) live in the
// database and are supplied by the operator at connect time.
type SerialConfig struct {
	ReadTimeoutMs     int           `yaml:"read_timeout_ms"`
	SimulateByDefault bool          `yaml:"simulate_by_default"`
	SimIntervalMs     int           `yaml:"sim_interval_ms"`
	ReadTimeout       time.Duration `yaml:"-"`
	SimInterval       time.Duration `yaml:"-"`
}

// SyncConfig holds the outbound queue drain cadence.
type SyncConfig struct {
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
}

// ErpConfig holds the ERP endpoint and credentials. Absence is not a startup
// failure; deliveries fail until it is configured.
type ErpConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	DB       string `yaml:"db"`
	Username string `yaml:"username"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "data/weighbridge.db"
	}

	if cfg.Serial.ReadTimeoutMs <= 0 {
		cfg.Serial.ReadTimeoutMs = 200
	}
	if cfg.Serial.SimIntervalMs <= 0 {
		cfg.Serial.SimIntervalMs = 500
	}
	cfg.Serial.ReadTimeout = time.Duration(cfg.Serial.ReadTimeoutMs) * time.Millisecond
	cfg.Serial.SimInterval = time.Duration(cfg.Serial.SimIntervalMs) * time.Millisecond

	if cfg.Sync.IntervalSeconds <= 0 {
		cfg.Sync.IntervalSeconds = 20
	}
	cfg.Sync.Interval = time.Duration(cfg.Sync.IntervalSeconds) * time.Second

	return &cfg, nil
}
