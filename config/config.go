// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Usage    UsageConfig    `yaml:"usage"`
	Plans    []PlanConfig   `yaml:"plans"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures storage.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "memory" or "sqlite"
	DSN    string `yaml:"dsn"`
}

// UsageConfig configures usage metering.
type UsageConfig struct {
	// WindowDays is the number of daily samples kept per account.
	WindowDays int `yaml:"window_days"`
}

// PlanConfig seeds a catalog plan at first boot. The cap label is parsed
// the same way the catalog API parses it ("500 GB", "1 TB", "Unlimited").
type PlanConfig struct {
	Name         string `yaml:"name"`
	Speed        string `yaml:"speed"`
	PriceMonthly string `yaml:"price_monthly"`
	Cap          string `yaml:"cap"`
	Description  string `yaml:"description"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	SUBWAVE_SERVER_HOST     - Server host (default: 0.0.0.0)
//	SUBWAVE_SERVER_PORT     - Server port (default: 8080)
//	SUBWAVE_DATABASE_DRIVER - Storage driver: memory or sqlite (default: sqlite)
//	SUBWAVE_DATABASE_DSN    - Database path (default: subwave.db)
//	SUBWAVE_USAGE_WINDOW    - Daily usage samples kept per account (default: 30)
//	SUBWAVE_LOG_LEVEL       - Log level: debug, info, warn, error (default: info)
//	SUBWAVE_LOG_FORMAT      - Log format: json or console (default: json)
//	SUBWAVE_METRICS_ENABLED - Enable /metrics endpoint (default: false)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables when the file doesn't exist.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies SUBWAVE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SUBWAVE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SUBWAVE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SUBWAVE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("SUBWAVE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := os.Getenv("SUBWAVE_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SUBWAVE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("SUBWAVE_USAGE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Usage.WindowDays = n
		}
	}

	if v := os.Getenv("SUBWAVE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SUBWAVE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("SUBWAVE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("SUBWAVE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "subwave.db"
	}

	if cfg.Usage.WindowDays == 0 {
		cfg.Usage.WindowDays = 30
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Default catalog if none configured
	if len(cfg.Plans) == 0 {
		cfg.Plans = []PlanConfig{
			{Name: "Basic", Speed: "50 Mbps", PriceMonthly: "29.99", Cap: "500 GB",
				Description: "Light browsing and streaming"},
			{Name: "Standard", Speed: "200 Mbps", PriceMonthly: "49.99", Cap: "1 TB",
				Description: "Households with heavy streaming"},
			{Name: "Premium", Speed: "1 Gbps", PriceMonthly: "79.99", Cap: "Unlimited",
				Description: "No limits, maximum speed"},
		}
	}
}

func validate(cfg *Config) error {
	validDrivers := map[string]bool{"memory": true, "sqlite": true}
	if !validDrivers[cfg.Database.Driver] {
		return fmt.Errorf("database.driver must be 'memory' or 'sqlite', got %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when database.driver is 'sqlite'")
	}

	if cfg.Usage.WindowDays < 0 {
		return fmt.Errorf("usage.window_days must not be negative, got %d", cfg.Usage.WindowDays)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	seen := make(map[string]bool)
	for i, p := range cfg.Plans {
		if p.Name == "" {
			return fmt.Errorf("plans[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("plans[%d].name %q duplicates an earlier plan", i, p.Name)
		}
		seen[p.Name] = true
		if p.PriceMonthly == "" {
			return fmt.Errorf("plans[%d].price_monthly is required", i)
		}
		price, err := decimal.NewFromString(p.PriceMonthly)
		if err != nil {
			return fmt.Errorf("plans[%d].price_monthly: %w", i, err)
		}
		if !price.IsPositive() {
			return fmt.Errorf("plans[%d].price_monthly must be positive, got %s", i, price)
		}
	}

	return nil
}
