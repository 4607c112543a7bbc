package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FOODCATALOG_STORE_BASE_URL.
const EnvPrefix = "FOODCATALOG"

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all configuration for the application.
// Values come from defaults, an optional config file, a .env file and the
// environment, in increasing order of precedence.
type Config struct {
	Server   ServerConfig `mapstructure:"server"`
	Store    StoreConfig  `mapstructure:"store"`
	Query    QueryConfig  `mapstructure:"query"`
	Cache    CacheConfig  `mapstructure:"cache"`
	Events   EventsConfig `mapstructure:"events"`
	Export   ExportConfig `mapstructure:"export"`
	LogLevel string       `mapstructure:"log_level"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// APIKeys, when set, are required on create, update and delete.
	APIKeys         []string      `mapstructure:"api_keys"`
}

// StoreConfig points at the Remote Food Store.
type StoreConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Resource          string        `mapstructure:"resource"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// QueryConfig tunes list caching and read retries.
type QueryConfig struct {
	StaleTime  time.Duration `mapstructure:"stale_time"`
	RetryCount int           `mapstructure:"retry_count"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type CacheConfig struct {
	Driver        string        `mapstructure:"driver"`
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

type EventsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type ExportConfig struct {
	Region string `mapstructure:"region"`
	Bucket string `mapstructure:"bucket"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

var defaults = map[string]any{
	"server.host":               "0.0.0.0",
	"server.port":               "8080",
	"server.read_timeout":       "15s",
	"server.write_timeout":      "15s",
	"server.shutdown_timeout":   "30s",
	"server.api_keys":           []string{},
	"store.base_url":            "https://6852821e0594059b23cdd834.mockapi.io",
	"store.resource":            "Food",
	"store.timeout":             "10s",
	"store.requests_per_second": 0,
	"store.burst":               1,
	"query.stale_time":          "30s",
	"query.retry_count":         2,
	"query.retry_delay":         "1s",
	"cache.driver":              CacheMemory,
	"cache.ttl":                 "5m",
	"cache.redis_addr":          "",
	"cache.redis_password":      "",
	"cache.redis_db":            0,
	"events.enabled":            false,
	"events.brokers":            []string{},
	"events.topic":              "food-catalog.events",
	"export.region":             "us-east-1",
	"export.bucket":             "",
	"log_level":                 "info",
}

// Load reads configuration. cfgFile may be empty.
func Load(cfgFile string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	return LoadWith(viper.New(), cfgFile)
}

// LoadDotEnv copies variables from the given files, or .env, into the
// process environment. Missing files are ignored and variables that are
// already set win.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadWith reads configuration into v, which callers may have bound to flags.
func LoadWith(v *viper.Viper, cfgFile string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	decoderConfigOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&cfg, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	cfg.Server.APIKeys = compact(cfg.Server.APIKeys)
	cfg.Events.Brokers = compact(cfg.Events.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	if c.Store.BaseURL == "" {
		return fmt.Errorf("store.base_url is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.Query.RetryCount < 0 {
		return fmt.Errorf("query.retry_count must not be negative")
	}

	switch c.Cache.Driver {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown cache driver: %s (must be memory or redis)", c.Cache.Driver)
	}

	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("events.brokers is required when events are enabled")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("events.topic is required when events are enabled")
		}
	}

	return nil
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
