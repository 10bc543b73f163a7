package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	Upstream UpstreamConfig
	DB       DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Worker   WorkerConfig
	Display  DisplayConfig
	CORS     CORSConfig
}

// UpstreamConfig points at the catalog REST API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DatabaseConfig contains PostgreSQL connection parameters for price history.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// ConnectAttempts bounds the startup retry loop; ConnectTimeout bounds each ping.
	ConnectAttempts int
	ConnectTimeout  time.Duration
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig contains TTLs for cached catalog data and sessions.
type CacheConfig struct {
	CatalogTTL time.Duration
	SessionTTL time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	SyncInterval     time.Duration
	HistoryRetention time.Duration
}

// DisplayConfig points at an optional YAML overlay for display tables.
type DisplayConfig struct {
	OverridesPath string
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedHosts []string
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	cfg.Upstream = UpstreamConfig{
		BaseURL: getEnv("UPSTREAM_BASE_URL", ""),
	}

	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
		ConnectAttempts: getEnvInt("DB_CONNECT_ATTEMPTS", 5),
	}

	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	cfg.Display = DisplayConfig{
		OverridesPath: getEnv("DISPLAY_CONFIG_PATH", ""),
	}

	cfg.CORS = CORSConfig{
		AllowedHosts: getEnvList("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000,peptidedeals.com,www.peptidedeals.com,admin.peptidedeals.com"),
	}

	var err error
	if cfg.Upstream.Timeout, err = parseDurationEnv("UPSTREAM_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}
	if cfg.DB.ConnMaxLifetime, err = parseDurationEnv("DB_CONN_MAX_LIFETIME", "30m"); err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}
	if cfg.DB.ConnectTimeout, err = parseDurationEnv("DB_CONNECT_TIMEOUT", "5s"); err != nil {
		return nil, fmt.Errorf("invalid DB_CONNECT_TIMEOUT: %w", err)
	}
	if cfg.Cache.CatalogTTL, err = parseDurationEnv("CATALOG_CACHE_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}
	if cfg.Cache.SessionTTL, err = parseDurationEnv("SESSION_TTL", "720h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.Worker.SyncInterval, err = parseDurationEnv("SYNC_INTERVAL", "15m"); err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	if cfg.Worker.HistoryRetention, err = parseDurationEnv("HISTORY_RETENTION", "2160h"); err != nil {
		return nil, fmt.Errorf("invalid HISTORY_RETENTION: %w", err)
	}

	if cfg.Upstream.BaseURL == "" {
		return nil, errors.New("UPSTREAM_BASE_URL must be set to the catalog API")
	}
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if cfg.DB.ConnectAttempts < 1 {
		return nil, errors.New("DB_CONNECT_ATTEMPTS must be at least 1")
	}
	if cfg.Worker.SyncInterval == 0 {
		return nil, errors.New("SYNC_INTERVAL must be greater than zero")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key, def string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
