// Package services implements the business logic layer of kovaakstats.
// It sits between the transports (CLI, HTTP) and the extraction pipeline.
//
// StatsService runs one extraction at a time: it locates result files,
// aggregates them with the configured failure policy, writes the configured
// outputs and keeps the last successful RunResult for readers.
//
// HealthService reports whether the stats directory is reachable and whether
// a run has completed.
package services
