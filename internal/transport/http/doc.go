// Package http implements the HTTP handlers of the stats web service.
//
// Handlers are thin: they read the request, call a service and write the
// response. Successful responses are JSON rendered with go-chi/render;
// failures are RFC 7807 problem documents written through the errors package.
//
// # Endpoints
//
//	GET  /api/stats             whole aggregated document, same shape as data.json
//	GET  /api/stats/{scenario}  records of one scenario
//	POST /api/stats/refresh     run an extraction now (409 while one is running)
//	GET  /api/summary           per-scenario summaries of the latest run
//	GET  /api/health            component health
//
// Every stats response carries the X-Run-ID header naming the run it was
// served from.
package http
