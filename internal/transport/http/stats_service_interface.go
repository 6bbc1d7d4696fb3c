package http

import (
	"context"

	"kovaakstats/internal/services"
	"kovaakstats/pkg/contracts/domain"
)

// StatsServiceInterface is what the stats handler needs from services.StatsService
type StatsServiceInterface interface {
	Latest() (*services.RunResult, error)
	Scenario(name string) ([]domain.StatRecord, error)
	Scenarios() []string
	TryRun(ctx context.Context) (*services.RunResult, error)
}

var _ StatsServiceInterface = (*services.StatsService)(nil)
