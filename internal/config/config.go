// Package config provides unified configuration loading for PageLingo.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pagelingo/pagelingo/internal/domain"
)

// Config holds all configuration for PageLingo.
type Config struct {
	Server        ServerConfig             `yaml:"server"`
	Database      DatabaseConfig           `yaml:"database"`
	Cache         CacheConfig              `yaml:"cache"`
	Translation   domain.TranslationConfig `yaml:"translation"`
	Render        RenderConfig             `yaml:"render"`
	Retry         RetryConfig              `yaml:"retry"`
	Observability ObservabilityConfig      `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
}

// DatabaseConfig holds SQLite settings for session persistence.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig holds translation cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// RenderConfig holds page rasterization settings.
type RenderConfig struct {
	MaxDimension int `yaml:"max_dimension"`
	JPEGQuality  int `yaml:"jpeg_quality"`
}

// RetryConfig holds backend retry settings.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	cfg.Translation = cfg.Translation.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8090,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   100 << 20,
		},
		Database: DatabaseConfig{
			Path: "/tmp/pagelingo.db",
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        24 * time.Hour,
			MaxEntries: 1000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Translation: domain.TranslationConfig{
			Provider:   domain.ProviderVision,
			TargetLang: "English",
		},
		Render: RenderConfig{
			MaxDimension: 768,
			JPEGQuality:  60,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Render.MaxDimension < 64 {
		return fmt.Errorf("render max_dimension must be at least 64")
	}

	if c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100 {
		return fmt.Errorf("render jpeg_quality must be between 1 and 100")
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("TRANSLATION_PROVIDER"); v != "" {
		cfg.Translation.Provider = domain.ProviderKind(v)
	}

	if v := os.Getenv("TRANSLATION_BASE_URL"); v != "" {
		cfg.Translation.BaseURL = v
	}

	if v := os.Getenv("TRANSLATION_API_KEY"); v != "" {
		cfg.Translation.APIKey = v
	}

	if v := os.Getenv("TRANSLATION_MODEL"); v != "" {
		cfg.Translation.Model = v
	}

	if v := os.Getenv("TRANSLATION_TARGET_LANG"); v != "" {
		cfg.Translation.TargetLang = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
