// Package config loads the process-wide configuration from the environment.
// It is built once at startup and passed explicitly into each component's
// constructor; nothing reads configuration ambiently after that.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Cache    Cache    `mapstructure:"cache"`
	Log      Log      `mapstructure:"log"`
}

// Server holds HTTP listener settings.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds relational-store settings. URL is required; startup fails
// without it.
type Database struct {
	URL string `mapstructure:"url"`
}

// Cache holds cache-engine settings. The eviction policy is not
// configurable; it is pinned to allkeys-lru by the cache package.
type Cache struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	MaxMemoryMB int    `mapstructure:"max_memory_mb"`
	TTLSeconds  int    `mapstructure:"ttl_seconds"`
}

// Log holds logging settings.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Addr returns the cache engine address as host:port.
func (c Cache) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TTL returns the configured default entry lifetime.
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"server.port":         "PORT",
	"database.url":        "DATABASE_URL",
	"cache.host":          "REDIS_HOST",
	"cache.port":          "REDIS_PORT",
	"cache.password":      "REDIS_PASSWORD",
	"cache.db":            "REDIS_DB",
	"cache.max_memory_mb": "CACHE_MAX_MEMORY_MB",
	"cache.ttl_seconds":   "CACHE_TTL_SECONDS",
	"log.level":           "LOG_LEVEL",
	"log.format":          "LOG_FORMAT",
}

// Load reads configuration from the environment, applies defaults, and
// validates the result.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 3000)
	v.SetDefault("database.url", "")
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.max_memory_mb", 10)
	v.SetDefault("cache.ttl_seconds", 3600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded configuration. A missing database URL is the
// one fatal omission; everything else has a usable default.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Database),
		validation.Field(&c.Cache),
	)
}

// Validate implements validation.Validatable.
func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// Validate implements validation.Validatable.
func (d Database) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.URL, validation.Required.Error("DATABASE_URL must be set")),
	)
}

// Validate implements validation.Validatable.
func (c Cache) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.MaxMemoryMB, validation.Required, validation.Min(1)),
		validation.Field(&c.TTLSeconds, validation.Required, validation.Min(1)),
	)
}
