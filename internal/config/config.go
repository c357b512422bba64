// Package config handles application configuration. Values start from
// Defaults, are overlaid by an optional YAML file and finally by
// STOREFRONT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is prepended to every environment key
	EnvPrefix = "STOREFRONT_"

	// FileEnv names the variable holding the optional YAML path
	FileEnv = EnvPrefix + "CONFIG"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend" envPrefix:"BACKEND_"`
	Cache   CacheConfig   `yaml:"cache"`
	Session SessionConfig `yaml:"session" envPrefix:"SESSION_"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT"`
}

// BackendConfig points at the REST backend
type BackendConfig struct {
	URL       string        `yaml:"url" env:"URL"`
	Timeout   time.Duration `yaml:"timeout" env:"TIMEOUT"`
	ETagTTL   time.Duration `yaml:"etag_ttl" env:"ETAG_TTL"`
	UserAgent string        `yaml:"user_agent" env:"USER_AGENT"`
}

// CacheConfig sizes the shared list caches and the ETag response store
type CacheConfig struct {
	ProductsTTL    time.Duration `yaml:"products_ttl" env:"PRODUCTS_TTL"`
	ShopsTTL       time.Duration `yaml:"shops_ttl" env:"SHOPS_TTL"`
	ETagCacheBytes int64         `yaml:"etag_cache_bytes" env:"ETAG_CACHE_BYTES"`
}

type SessionConfig struct {
	Lifetime     time.Duration `yaml:"lifetime" env:"LIFETIME"`
	CookieSecure bool          `yaml:"cookie_secure" env:"COOKIE_SECURE"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// Defaults returns the configuration used when nothing is overridden
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Backend: BackendConfig{
			URL:       "http://localhost:8000",
			Timeout:   15 * time.Second,
			ETagTTL:   5 * time.Minute,
			UserAgent: "storefront/1.0",
		},
		Cache: CacheConfig{
			ProductsTTL:    time.Minute,
			ShopsTTL:       time.Minute,
			ETagCacheBytes: 32 << 20,
		},
		Session: SessionConfig{Lifetime: 12 * time.Hour},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file named by STOREFRONT_CONFIG (if any) and then the
// environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv(FileEnv))
}

// LoadFrom is Load with an explicit YAML path. An empty path skips the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port is required"))
	}
	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid backend url %q", c.Backend.URL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend timeout must be positive"))
	}
	if c.Backend.ETagTTL < 0 {
		errs = append(errs, errors.New("backend etag ttl must not be negative"))
	}
	if c.Cache.ProductsTTL < 0 || c.Cache.ShopsTTL < 0 {
		errs = append(errs, errors.New("cache ttl must not be negative"))
	}
	if c.Cache.ETagCacheBytes <= 0 {
		errs = append(errs, errors.New("etag cache size must be positive"))
	}
	if c.Session.Lifetime <= 0 {
		errs = append(errs, errors.New("session lifetime must be positive"))
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}

// LogLevel returns the parsed logging level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
