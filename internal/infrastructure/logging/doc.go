// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components receive a named child logger (http, packages, watch, core) so
// every line carries its origin.
//
// Example Usage:
//
//	logger := logging.FromLevel("info", false)
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Component("packages").Warn("Manifest missing", zap.String("path", p))
package logging
