package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "MyBank"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultLedgerURL      = "http://localhost:8080"
	defaultSQLitePath     = "mybank.db"
	defaultRequestTimeout = 15 * time.Second
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
)

// Config captures runtime configuration for both the ledger service and the
// client shell, loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	// Ledger service storage. DatabaseURL selects Postgres; when empty the
	// service falls back to SQLite at SQLitePath, and an empty SQLitePath
	// means in-memory only.
	DatabaseURL string
	SQLitePath  string

	// RedisURL enables the idempotency and login rate-limit middleware when
	// set; without it the service runs unguarded (dev only).
	RedisURL string

	// LedgerURL is the base URL the client shell talks to.
	LedgerURL string

	// RequestTimeout bounds every ledger call made by the client.
	RequestTimeout time.Duration

	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getEnv("SQLITE_PATH", defaultSQLitePath),
		RedisURL:       os.Getenv("REDIS_URL"),
		LedgerURL:      getEnv("LEDGER_URL", defaultLedgerURL),
		RequestTimeout: defaultRequestTimeout,
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
	}

	var err error
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", "REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", "SHUTDOWN_TIMEOUT_SECONDS", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", "IDEMPOTENCY_TTL_SECONDS", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationEnv(durKey, secondsKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(durKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durKey, err)
		}
		return d, nil
	}
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
