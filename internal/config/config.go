package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the gateway server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port                  int
	Env                   string
	RoutePrefixes         []string
	RateLimitPerMinute    int
	BackgroundTaskTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RunMigrations   bool
	MigrationsDir   string
}

// RedisConfig is optional; an empty URL disables rate limiting.
type RedisConfig struct {
	URL string
}

type TelemetryConfig struct {
	ServiceName string
}

const defaultRoutePrefixes = "/functions/v1/api-gateway,/api-gateway"

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:                  envInt("GATEWAY_PORT", 8080),
			Env:                   envString("GATEWAY_ENV", "development"),
			RoutePrefixes:         envList("GATEWAY_ROUTE_PREFIXES", defaultRoutePrefixes),
			RateLimitPerMinute:    envInt("RATE_LIMIT_PER_MINUTE", 120),
			BackgroundTaskTimeout: envDuration("BACKGROUND_TASK_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			RunMigrations:   envBool("DATABASE_RUN_MIGRATIONS", true),
			MigrationsDir:   envString("MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Telemetry: TelemetryConfig{
			ServiceName: envString("OTEL_SERVICE_NAME", "portfolio-gateway"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("GATEWAY_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	for _, p := range c.Server.RoutePrefixes {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("GATEWAY_ROUTE_PREFIXES entries must start with /, got %q", p)
		}
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL != "" &&
		!strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}

	if c.Server.BackgroundTaskTimeout <= 0 {
		return fmt.Errorf("BACKGROUND_TASK_TIMEOUT must be positive")
	}

	return nil
}

// RateLimitEnabled reports whether per-token rate limiting should be wired.
func (c *Config) RateLimitEnabled() bool {
	return c.Redis.URL != "" && c.Server.RateLimitPerMinute > 0
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// envList splits a comma-separated value, dropping blanks and trailing slashes.
func envList(key, defaultVal string) []string {
	raw := envString(key, defaultVal)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
