package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://rescue.example.org/api")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SESSION_CHECK_INTERVAL", "")
	t.Setenv("FRESHNESS_NAMESPACES", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageFile, cfg.StorageBackend)
	assert.Equal(t, 5*time.Minute, cfg.SessionCheckInterval)
	assert.Equal(t, 2*time.Second, cfg.FreshnessFallback)
	assert.Equal(t, []string{"urgencies", "shifts", "employees", "activities"}, cfg.FreshnessNamespaces)
	assert.Equal(t, 128, cfg.AvatarSize)
	assert.Equal(t, []string{DefaultUIOrigin}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://localhost:9000")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("SESSION_CHECK_INTERVAL", "30s")
	t.Setenv("CORS_ORIGINS", "http://a.local, ,http://b.local")
	t.Setenv("OUTBOUND_RPS", "2.5")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.StorageBackend)
	assert.Equal(t, 30*time.Second, cfg.SessionCheckInterval)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins)
	assert.Equal(t, 2.5, cfg.OutboundRPS)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerPort:           "8080",
			RequestTimeout:       time.Second,
			BackendURL:           "https://rescue.example.org",
			SessionCheckInterval: time.Minute,
			FreshnessFallback:    2 * time.Second,
			StorageBackend:       StorageMemory,
			AvatarSize:           64,
			CORSOrigins:          []string{"http://localhost:4200"},
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"missing backend":         func(c *Config) { c.BackendURL = "" },
		"relative backend":        func(c *Config) { c.BackendURL = "/api" },
		"ftp backend":             func(c *Config) { c.BackendURL = "ftp://rescue.example.org" },
		"unknown storage":         func(c *Config) { c.StorageBackend = "s3" },
		"postgres without url":    func(c *Config) { c.StorageBackend = StoragePostgres },
		"file without path":       func(c *Config) { c.StorageBackend = StorageFile },
		"zero check interval":     func(c *Config) { c.SessionCheckInterval = 0 },
		"outbound rps with burst": func(c *Config) { c.OutboundRPS = 1 },
		"zero avatar size":        func(c *Config) { c.AvatarSize = 0 },
		"wildcard origin":         func(c *Config) { c.CORSOrigins = []string{"http://localhost:4200", "*"} },
		"origin with path":        func(c *Config) { c.CORSOrigins = []string{"http://localhost:4200/app"} },
		"origin without scheme":   func(c *Config) { c.CORSOrigins = []string{"localhost:4200"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
