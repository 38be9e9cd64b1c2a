// Package config provides configuration management for the scraper service.
// Values come from an optional YAML file, environment variables (including a
// .env file), and defaults, with environment variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/salimhm/zillow-scraper/internal/fetch"
	"github.com/salimhm/zillow-scraper/internal/ratelimit"
)

// Server defaults.
const (
	defaultServerAddress      = ":8080"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerIdleTimeout  = 60 * time.Second
)

// validLogLevels defines the accepted logging levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Config is the application configuration.
type Config struct {
	Scraper ScraperConfig `mapstructure:"scraper" yaml:"scraper"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
}

// ScraperConfig holds fetch, identity, proxy, and rate-limit settings.
type ScraperConfig struct {
	// Proxies is the upstream proxy pool. Empty means direct requests;
	// a single entry uses the pass-through supplier; more rotate.
	Proxies []string `mapstructure:"proxies" yaml:"proxies"`

	// UserAgents overrides the built-in identity pool.
	UserAgents []string `mapstructure:"user_agents" yaml:"user_agents"`

	// UserAgentServiceURL points at an optional external identity
	// generator, queried lazily.
	UserAgentServiceURL string `mapstructure:"user_agent_service_url" yaml:"user_agent_service_url"`

	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	DelayMin   time.Duration `mapstructure:"delay_min" yaml:"delay_min"`
	DelayMax   time.Duration `mapstructure:"delay_max" yaml:"delay_max"`

	RatePerMinute int `mapstructure:"rate_per_minute" yaml:"rate_per_minute"`
	RatePerHour   int `mapstructure:"rate_per_hour" yaml:"rate_per_hour"`
}

// RedisConfig holds the shared coordination store settings. When disabled,
// an in-process store is used and coordination is per-instance only.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address" yaml:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// LoggerConfig holds structured-logging settings.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Encoding    string `mapstructure:"encoding" yaml:"encoding"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Load reads configuration from the given file (optional), the
// environment, and defaults. An empty path searches ./config.yaml and
// ./config/config.yaml.
func Load(path string) (*Config, error) {
	// Make .env values visible to viper's environment lookup.
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	// The config file is optional when no explicit path was given; env
	// vars and defaults suffice.
	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults applies production-safe defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.timeout", fetch.DefaultTimeout)
	v.SetDefault("scraper.max_retries", fetch.DefaultMaxRetries)
	v.SetDefault("scraper.delay_min", fetch.DefaultDelayMin)
	v.SetDefault("scraper.delay_max", fetch.DefaultDelayMax)
	v.SetDefault("scraper.rate_per_minute", ratelimit.DefaultPerMinute)
	v.SetDefault("scraper.rate_per_hour", ratelimit.DefaultPerHour)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("server.address", defaultServerAddress)
	v.SetDefault("server.read_timeout", defaultServerReadTimeout)
	v.SetDefault("server.write_timeout", defaultServerWriteTimeout)
	v.SetDefault("server.idle_timeout", defaultServerIdleTimeout)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.development", false)
}

// bindEnvVars maps environment variables to config keys. Proxies and user
// agents arrive comma-separated and are split by the decoder.
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string][]string{
		"scraper.proxies":                {"SCRAPER_PROXIES"},
		"scraper.user_agents":            {"SCRAPER_USER_AGENTS"},
		"scraper.user_agent_service_url": {"SCRAPER_USER_AGENT_SERVICE_URL"},
		"scraper.timeout":                {"SCRAPER_TIMEOUT"},
		"scraper.max_retries":            {"SCRAPER_MAX_RETRIES"},
		"scraper.rate_per_minute":        {"SCRAPER_RATE_PER_MINUTE"},
		"scraper.rate_per_hour":          {"SCRAPER_RATE_PER_HOUR"},
		"redis.enabled":                  {"REDIS_ENABLED"},
		"redis.addr":                     {"REDIS_ADDR", "REDIS_URL"},
		"redis.password":                 {"REDIS_PASSWORD"},
		"server.address":                 {"SERVER_ADDRESS"},
		"logger.level":                   {"LOG_LEVEL"},
		"logger.encoding":                {"LOG_FORMAT"},
	}

	for key, vars := range bindings {
		args := append([]string{key}, vars...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level %q", c.Logger.Level)
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper timeout must be positive, got %s", c.Scraper.Timeout)
	}
	if c.Scraper.MaxRetries < 0 {
		return fmt.Errorf("scraper max retries must not be negative, got %d", c.Scraper.MaxRetries)
	}
	if c.Scraper.DelayMax < c.Scraper.DelayMin {
		return fmt.Errorf("scraper delay_max (%s) is below delay_min (%s)", c.Scraper.DelayMax, c.Scraper.DelayMin)
	}
	if c.Scraper.RatePerMinute <= 0 || c.Scraper.RatePerHour <= 0 {
		return fmt.Errorf("rate ceilings must be positive")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis enabled but no address configured")
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	return nil
}
