// Package config provides 12-factor configuration management for the webdesk server.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, shutdown timeout)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Paths: Configuration root, public assets and user homes
//   - Packages: Manifest filename, discovery list and discovery roots
//   - Fetch: Package download limits
//   - Auth: Session lifetime and registration policy
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CONFIG_ROOT, PUBLIC_DIR, VFS_HOME
//   - PACKAGES_METADATA, PACKAGES_DISCOVERY, PACKAGES_ROOTS
//   - FETCH_TIMEOUT, FETCH_RETRIES, FETCH_MAX_BYTES
//   - SESSION_TTL, AUTH_DEFAULT_GROUPS, AUTH_ALLOW_REGISTER
//   - DEVELOPMENT
package config
