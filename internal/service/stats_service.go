package service

import (
	"context"

	"github.com/google/uuid"

	"sitecheck/internal/domain"
	"sitecheck/internal/port"
)

// StatsService provides aggregate statistics.
type StatsService interface {
	GetStats(ctx context.Context, userID uuid.UUID) (*domain.InvoiceStats, error)
}

type statsService struct {
	statsRepo port.StatsRepository
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) GetStats(ctx context.Context, userID uuid.UUID) (*domain.InvoiceStats, error) {
	return s.statsRepo.GetUserStats(ctx, userID)
}
