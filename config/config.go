package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHTTPAddr       = ":8080"
	DefaultWorkers        = 8
	DefaultImportTimeout  = 60 * time.Second
	DefaultMaxUploadBytes = 10 << 20
	DefaultRateLimit      = 1.0
	DefaultRateBurst      = 5
	DefaultJWTTTL         = 12 * time.Hour
	DefaultBusBuffer      = 64
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Import        ImportConfig        `yaml:"import"`
	EventBus      EventBusConfig      `yaml:"event_bus"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// RateLimit is the sustained upload requests per second allowed per client IP.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// ImportConfig tunes the spreadsheet import pipeline.
type ImportConfig struct {
	Workers          int           `yaml:"workers"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	DefaultBeltLabel string        `yaml:"default_belt_label"`
}

// EventBusConfig holds the in-process event bus configuration.
type EventBusConfig struct {
	BufferSize int64 `yaml:"buffer_size"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"` // json|text
}

// LoadConfig loads the configuration from a YAML file, then applies environment overrides.
// When the file cannot be read the configuration comes from the environment alone.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWT.Issuer = v
	}
	if v := os.Getenv("IMPORT_DEFAULT_BELT_LABEL"); v != "" {
		cfg.Import.DefaultBeltLabel = v
	}
	if v := os.Getenv("IMPORT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IMPORT_WORKERS value: %w", err)
		}
		cfg.Import.Workers = n
	}
	if v := os.Getenv("IMPORT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid IMPORT_TIMEOUT value: %w", err)
		}
		cfg.Import.Timeout = d
	}
	if v := os.Getenv("IMPORT_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid IMPORT_MAX_UPLOAD_BYTES value: %w", err)
		}
		cfg.Import.MaxUploadBytes = n
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate fills in defaults and rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if c.HTTP.RateLimit == 0 {
		c.HTTP.RateLimit = DefaultRateLimit
	}
	if c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = DefaultRateBurst
	}
	if c.JWT.DefaultTTL == 0 {
		c.JWT.DefaultTTL = DefaultJWTTTL
	}
	if c.Import.Workers == 0 {
		c.Import.Workers = DefaultWorkers
	}
	if c.Import.Timeout == 0 {
		c.Import.Timeout = DefaultImportTimeout
	}
	if c.Import.MaxUploadBytes == 0 {
		c.Import.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.EventBus.BufferSize == 0 {
		c.EventBus.BufferSize = DefaultBusBuffer
	}
	if c.Observability.LogFormat == "" {
		c.Observability.LogFormat = "json"
	}

	var errs []error
	if c.Import.Workers < 0 {
		errs = append(errs, fmt.Errorf("import.workers must be positive, got %d", c.Import.Workers))
	}
	if c.Import.Timeout < 0 {
		errs = append(errs, fmt.Errorf("import.timeout must be positive, got %s", c.Import.Timeout))
	}
	if c.Import.MaxUploadBytes < 0 {
		errs = append(errs, fmt.Errorf("import.max_upload_bytes must be positive, got %d", c.Import.MaxUploadBytes))
	}
	if c.HTTP.RateLimit < 0 || c.HTTP.RateBurst < 0 {
		errs = append(errs, errors.New("http rate limit and burst must be positive"))
	}
	switch c.Observability.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("observability.log_format must be json or text, got %q", c.Observability.LogFormat))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LogLevel parses observability.log_level. Empty means info.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Observability.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Observability.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid observability.log_level: %w", err)
	}
	return level, nil
}
