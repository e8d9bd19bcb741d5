package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Package config
	assert.Equal(t, "metadata.json", cfg.Packages.Metadata)
	assert.Equal(t, "packages.json", cfg.Packages.Discovery)
	assert.Equal(t, []string{"src/packages"}, cfg.Packages.Roots)

	assert.Equal(t, int64(64<<20), cfg.Fetch.MaxBytes)
	assert.Equal(t, []string{"admin"}, cfg.Auth.DefaultGroups)
	assert.False(t, cfg.Development)
}

func TestLoadPackageDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default().Packages, cfg.Packages)
	assert.Equal(t, Default().Fetch, cfg.Fetch)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"HOST":                "127.0.0.1",
		"SHUTDOWN_TIMEOUT":    "3s",
		"LOG_LEVEL":           "debug",
		"LOG_DEV":             "true",
		"RATE_LIMIT_ENABLED":  "false",
		"CONFIG_ROOT":         "/etc/webdesk",
		"PUBLIC_DIR":          "/var/www",
		"VFS_HOME":            "/srv/home",
		"PACKAGES_METADATA":   "manifest.json",
		"PACKAGES_DISCOVERY":  "discovered.json",
		"PACKAGES_ROOTS":      "a,b",
		"FETCH_RETRIES":       "5",
		"SESSION_TTL":         "1h",
		"AUTH_DEFAULT_GROUPS": "users,admin",
		"AUTH_ALLOW_REGISTER": "false",
		"DEVELOPMENT":         "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "/etc/webdesk", cfg.Paths.Root)
	assert.Equal(t, "/var/www", cfg.Paths.Public)
	assert.Equal(t, "/srv/home", cfg.Paths.Home)
	assert.Equal(t, "manifest.json", cfg.Packages.Metadata)
	assert.Equal(t, "discovered.json", cfg.Packages.Discovery)
	assert.Equal(t, []string{"a", "b"}, cfg.Packages.Roots)
	assert.Equal(t, 5, cfg.Fetch.Retries)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, []string{"users", "admin"}, cfg.Auth.DefaultGroups)
	assert.False(t, cfg.Auth.AllowRegister)
	assert.True(t, cfg.Development)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
