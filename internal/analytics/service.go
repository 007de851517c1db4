package analytics

import (
	"context"

	"github.com/nulzo/neurix/internal/store"
	"github.com/nulzo/neurix/internal/store/model"
)

const (
	DefaultDays = 7
	MaxDays     = 365
)

type Service interface {
	GetUsageOverview(ctx context.Context, days int) ([]model.DailyStats, error)
	GetRecent(ctx context.Context, limit int) ([]model.UsageRecord, error)
}

type service struct {
	repo store.Repository
}

func NewService(repo store.Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetUsageOverview(ctx context.Context, days int) ([]model.DailyStats, error) {
	if days <= 0 {
		days = DefaultDays
	}
	if days > MaxDays {
		days = MaxDays
	}
	stats, err := s.repo.Usage().GetDailyStats(ctx, days)
	if stats == nil {
		stats = []model.DailyStats{}
	}
	return stats, err
}

func (s *service) GetRecent(ctx context.Context, limit int) ([]model.UsageRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.Usage().GetRecent(ctx, limit)
}
