// Package fetch downloads package archives for installation.
//
// Requests go through resty on top of a retryablehttp client (backoff on
// connection errors and 5xx), a token-bucket limiter and a circuit breaker
// that only counts host-side failures. Bodies are capped at a configured
// size.
package fetch
