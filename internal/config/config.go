package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// DefaultUIOrigin is where the console UI dev server runs.
const DefaultUIOrigin = "http://localhost:4200"

type Config struct {
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration

	BackendURL           string
	SessionCheckInterval time.Duration
	FreshnessFallback    time.Duration
	FreshnessNamespaces  []string

	StorageBackend    string
	StorageFile       string
	StoragePassphrase string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	DatabaseURL       string
	DBMaxConns        int
	DBMinConns        int

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
	OutboundRPS      float64
	OutboundBurst    int

	AvatarSize int
	LogLevel   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("CONSOLE_PORT", "8080"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),

		BackendURL:           strings.TrimSpace(os.Getenv("BACKEND_URL")),
		SessionCheckInterval: getDuration("SESSION_CHECK_INTERVAL", 5*time.Minute),
		FreshnessFallback:    getDuration("FRESHNESS_FALLBACK", 2*time.Second),
		FreshnessNamespaces:  splitCSV(getEnv("FRESHNESS_NAMESPACES", "urgencies,shifts,employees,activities")),

		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", StorageFile)),
		StorageFile:       getEnv("STORAGE_FILE", "./state/local-storage.json"),
		StoragePassphrase: os.Getenv("STORAGE_PASSPHRASE"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getInt("REDIS_DB", 0),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:        getInt("DB_MAX_CONNS", 5),
		DBMinConns:        getInt("DB_MIN_CONNS", 1),

		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", DefaultUIOrigin)),
		RateLimitRPM:     getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM: getInt("AUTH_RATE_LIMIT_RPM", 10),
		OutboundRPS:      getFloat("OUTBOUND_RPS", 0),
		OutboundBurst:    getInt("OUTBOUND_BURST", 10),

		AvatarSize: getInt("AVATAR_SIZE", 128),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}

	backend, err := url.Parse(c.BackendURL)
	if err != nil || (backend.Scheme != "http" && backend.Scheme != "https") || backend.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute http(s) URL")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("CONSOLE_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.SessionCheckInterval <= 0 {
		return fmt.Errorf("SESSION_CHECK_INTERVAL must be positive")
	}

	if c.FreshnessFallback <= 0 {
		return fmt.Errorf("FRESHNESS_FALLBACK must be positive")
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StorageFile:
		if strings.TrimSpace(c.StorageFile) == "" {
			return fmt.Errorf("STORAGE_FILE cannot be empty")
		}
	case StorageRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
		}
		if c.DBMaxConns <= 0 {
			return fmt.Errorf("DB_MAX_CONNS must be positive")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of memory, file, redis, postgres")
	}

	// the gateway attaches the stored token to proxied calls, so every
	// allowed origin can act as the signed-in operator
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS cannot contain *; list the console UI origins")
		}
		parsed, err := url.Parse(origin)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" || (parsed.Path != "" && parsed.Path != "/") {
			return fmt.Errorf("CORS_ORIGINS entry %q must be a scheme://host[:port] origin", origin)
		}
	}

	if c.OutboundRPS < 0 {
		return fmt.Errorf("OUTBOUND_RPS cannot be negative")
	}

	if c.OutboundRPS > 0 && c.OutboundBurst <= 0 {
		return fmt.Errorf("OUTBOUND_BURST must be positive when OUTBOUND_RPS is set")
	}

	if c.AvatarSize <= 0 {
		return fmt.Errorf("AVATAR_SIZE must be positive")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
