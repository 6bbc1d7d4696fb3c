package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthService_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T) *StatsService
		run        bool
		wantStatus string
	}{
		{
			name:       "ready after a run",
			setup:      func(t *testing.T) *StatsService { return NewStatsService(testConfig(t), testLogger()) },
			run:        true,
			wantStatus: "ok",
		},
		{
			name:       "degraded before the first run",
			setup:      func(t *testing.T) *StatsService { return NewStatsService(testConfig(t), testLogger()) },
			wantStatus: "degraded",
		},
		{
			name: "degraded when the stats directory is missing",
			setup: func(t *testing.T) *StatsService {
				cfg := testConfig(t)
				cfg.Extraction.StatsDir = filepath.Join(t.TempDir(), "missing")
				return NewStatsService(cfg, testLogger())
			},
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := tt.setup(t)
			if tt.run {
				_, err := svc.Run(context.Background())
				require.NoError(t, err)
			}

			hs := NewHealthService("1.2.3", svc, &recordingBroadcaster{}, testLogger())
			status := hs.HealthCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, "1.2.3", status.Version)
			assert.Contains(t, status.Services, "stats_dir")
			assert.Contains(t, status.Services, "extraction")
			assert.Equal(t, "3 clients connected", status.Services["websocket"].(ServiceHealth).Message)
		})
	}
}

func TestHealthService_NoStatsService(t *testing.T) {
	status := NewHealthService("dev", nil, nil, nil).HealthCheck(context.Background())
	assert.Equal(t, "degraded", status.Status)
}
