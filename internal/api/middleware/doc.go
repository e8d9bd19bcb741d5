// Package middleware provides the HTTP middleware used by the web desktop
// server.
//
// Middleware stack includes:
//   - Recovery: Panic recovery with a JSON 500 and a logged stack
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting with idle cleanup
//   - Authenticate: Session check via bearer token or session cookie
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
//	api := router.Group("/api", middleware.Authenticate(authService))
package middleware
