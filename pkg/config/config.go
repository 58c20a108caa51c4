package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	APIBaseURL         string `mapstructure:"API_BASE_URL"`
	HTTPTimeoutSeconds int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`

	CacheBackend  string `mapstructure:"CACHE_BACKEND"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	SnapshotBackend string `mapstructure:"SNAPSHOT_BACKEND"`
	PostgresURL     string `mapstructure:"POSTGRES_URL"`
	BuildID         string `mapstructure:"BUILD_ID"`

	// PrerenderOnStart renders every static page in the background at boot.
	PrerenderOnStart bool `mapstructure:"PRERENDER_ON_START"`

	SearchDebounceMS int `mapstructure:"SEARCH_DEBOUNCE_MS"`
	RevalidateDays   int `mapstructure:"REVALIDATE_DAYS"`
}

// HTTPTimeout is the per-request timeout for catalog calls.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// SearchDebounce is the quiet period before a search is issued.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}

// RevalidateInterval is how long regenerated pages stay fresh.
func (c *Config) RevalidateInterval() time.Duration {
	return time.Duration(c.RevalidateDays) * 24 * time.Hour
}

// Load reads configuration from .env, configs/config.yml and environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is fine; production sets real environment variables.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath("configs")
	v.SetConfigName("config")
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper applies defaults and environment overrides to v and decodes it.
func FromViper(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("API_BASE_URL", "https://rickandmortyapi.com/api")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 10)
	v.SetDefault("CACHE_BACKEND", BackendMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SNAPSHOT_BACKEND", BackendMemory)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("BUILD_ID", "")
	v.SetDefault("PRERENDER_ON_START", false)
	v.SetDefault("SEARCH_DEBOUNCE_MS", 300)
	v.SetDefault("REVALIDATE_DAYS", 10)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerPort == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL is required"))
	}
	switch c.CacheBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when CACHE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.CacheBackend))
	}
	switch c.SnapshotBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("POSTGRES_URL is required when SNAPSHOT_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("SNAPSHOT_BACKEND must be %q or %q, got %q", BackendMemory, BackendPostgres, c.SnapshotBackend))
	}
	if c.HTTPTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT_SECONDS must be positive"))
	}
	if c.SearchDebounceMS < 0 {
		errs = append(errs, errors.New("SEARCH_DEBOUNCE_MS must not be negative"))
	}
	if c.RevalidateDays <= 0 {
		errs = append(errs, errors.New("REVALIDATE_DAYS must be positive"))
	}
	return errors.Join(errs...)
}
