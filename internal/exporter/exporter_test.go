package exporter

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"kovaakstats/internal/files"
	"kovaakstats/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testManager() *files.Manager {
	return files.NewManager(testLogger())
}

// sampleStats has a populated scenario, an empty one and a non-ASCII name
func sampleStats(t *testing.T) *domain.AggregatedStats {
	t.Helper()
	stats := domain.NewAggregatedStats()
	stats.Append("Air Voltaic Easy", domain.StatRecord{
		Timestamp: time.Date(2021, 5, 1, 14, 30, 0, 0, time.UTC),
		Score:     12.5,
	})
	stats.Append("Air Voltaic Easy", domain.StatRecord{
		Timestamp: time.Date(2021, 5, 2, 9, 0, 0, 250000000, time.UTC),
		Score:     domain.NoScore,
	})
	stats.Add("Pasu Voltaic Easy")
	stats.Append("Ärger <Voltaic>", domain.StatRecord{
		Timestamp: time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC),
		Score:     20,
	})
	return stats
}
