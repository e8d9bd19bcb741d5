// Package http provides the core/http capability: the gin engine every other
// provider binds routes on.
//
// Init installs recovery, request tracing, metrics, CORS and rate limiting,
// then the session routes (/api/login, /api/logout, /api/register,
// /api/session), /healthz, /metrics and the /api/ws broadcast socket.
// Providers that depend on core/http call Route or RouteAuthenticated
// during their own Init. Start listens in the background; Destroy shuts the
// server down gracefully.
package http
