package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Paths     PathsConfig
	Packages  PackagesConfig
	Fetch     FetchConfig
	Auth      AuthConfig

	// Development enables developer tooling such as the manifest watcher.
	Development bool `envconfig:"DEVELOPMENT" default:"false"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// PathsConfig holds the filesystem roots the server works from.
type PathsConfig struct {
	// Root is the configuration root; relative package paths resolve against it.
	Root string `envconfig:"CONFIG_ROOT" default:"."`
	// Public is the directory holding the built client assets.
	Public string `envconfig:"PUBLIC_DIR" default:"dist"`
	// Home holds one directory per user (the "home:" mountpoint).
	Home string `envconfig:"VFS_HOME" default:"vfs/home"`
}

// PackagesConfig holds package metadata locations.
type PackagesConfig struct {
	// Metadata is the manifest filename inside the public directory.
	Metadata string `envconfig:"PACKAGES_METADATA" default:"metadata.json"`
	// Discovery is the discovered-packages list, relative to the configuration root.
	Discovery string `envconfig:"PACKAGES_DISCOVERY" default:"packages.json"`
	// Roots are searched for package metadata by discovery.
	Roots []string `envconfig:"PACKAGES_ROOTS" default:"src/packages"`
}

// FetchConfig holds outbound download settings used by package installs.
type FetchConfig struct {
	Timeout  time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	Retries  int           `envconfig:"FETCH_RETRIES" default:"3"`
	MaxBytes int64         `envconfig:"FETCH_MAX_BYTES" default:"67108864"`
}

// AuthConfig holds session authentication settings.
type AuthConfig struct {
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	DefaultGroups []string      `envconfig:"AUTH_DEFAULT_GROUPS" default:"admin"`
	AllowRegister bool          `envconfig:"AUTH_ALLOW_REGISTER" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Paths: PathsConfig{
			Root:   ".",
			Public: "dist",
			Home:   "vfs/home",
		},
		Packages: PackagesConfig{
			Metadata:  "metadata.json",
			Discovery: "packages.json",
			Roots:     []string{"src/packages"},
		},
		Fetch: FetchConfig{
			Timeout:  30 * time.Second,
			Retries:  3,
			MaxBytes: 64 << 20,
		},
		Auth: AuthConfig{
			SessionTTL:    24 * time.Hour,
			DefaultGroups: []string{"admin"},
			AllowRegister: true,
		},
		Development: false,
	}
}
