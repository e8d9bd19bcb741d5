/*
Package tracing provides request correlation for the HTTP surface.

# Overview

Each request receives an identifier in the X-Request-ID header (an inbound
UUID is reused, anything else is replaced). The identifier is stored on the
request context together with a zap logger carrying a request_id field, so
handlers and the package manager log with correlation for free.

# Usage

	router.Use(tracing.HTTPMiddleware(logger))

	func handler(c *gin.Context) {
		log := tracing.GinLogger(c, fallback)
		log.Info("installing package")
	}
*/
package tracing
