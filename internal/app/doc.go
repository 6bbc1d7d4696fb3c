// Package app wires configuration, services and HTTP transport into the stats
// web service and manages its lifecycle.
//
// # Routes
//
//	/ws          WebSocket push of stats_updated events
//	/api/...     stats, summary, health and version endpoints
//	/metrics     Prometheus scrape endpoint, when the prometheus exporter is enabled
//
// # Middleware order
//
// RequestID and RealIP run for every request. API routes additionally get
// StructuredLogger, Recoverer, SecurityHeaders, CORS and, when configured, the
// rate limiter. /ws stays outside that group because the upgrade needs the
// unwrapped ResponseWriter.
//
// # Lifecycle
//
// Run listens, serves and performs one extraction in the background. It
// returns after SIGINT, SIGTERM or cancellation of its context, once the server
// and the WebSocket hub have shut down. Errors are returned to the caller; the
// package never calls os.Exit.
package app
