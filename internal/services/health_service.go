package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// ClientCounter reports connected push clients
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	stats     *StatsService
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service. clients may be nil.
func NewHealthService(version string, stats *StatsService, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		stats:     stats,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck reports liveness plus the state of the stats directory and the last run.
// Status is "ok" when everything is ready and "degraded" otherwise.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
		Services: map[string]interface{}{
			"stats_dir":  hs.checkStatsDir(),
			"extraction": hs.checkExtraction(),
			"websocket":  hs.checkWebSocket(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "degraded"
			break
		}
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed", slog.String("status", status.Status))
	return status
}

// checkStatsDir checks that the stats directory can be listed
func (hs *HealthService) checkStatsDir() ServiceHealth {
	if hs.stats == nil {
		return ServiceHealth{Status: "not_ready", Message: "stats service not initialized"}
	}
	dir := hs.stats.StatsDir()
	info, err := os.Stat(dir)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("stats directory not accessible: %s", dir)}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("stats path is not a directory: %s", dir)}
	}
	return ServiceHealth{Status: "ready"}
}

// checkExtraction reports whether a successful run has completed
func (hs *HealthService) checkExtraction() ServiceHealth {
	if hs.stats == nil {
		return ServiceHealth{Status: "not_ready", Message: "stats service not initialized"}
	}
	result, err := hs.stats.Latest()
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("last run %s at %s", result.RunID, result.CompletedAt.Format(time.RFC3339)),
	}
}

// checkWebSocket reports the number of connected clients
func (hs *HealthService) checkWebSocket() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: "ready", Message: "push disabled"}
	}
	return ServiceHealth{Status: "ready", Message: fmt.Sprintf("%d clients connected", hs.clients.ClientCount())}
}
