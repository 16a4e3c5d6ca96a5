package service

import (
	"context"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/repository"
)

// StatsService serves the admin dashboard counters.
type StatsService struct {
	stats repository.StatsRepository
}

// NewStatsService creates the service.
func NewStatsService(stats repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

func (s *StatsService) Get(ctx context.Context) (*domain.Stats, error) {
	return s.stats.Get(ctx)
}
