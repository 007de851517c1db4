package store

import (
	"context"

	"github.com/nulzo/neurix/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Usage() UsageRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

type UsageRepository interface {
	// Record stores one upstream call.
	Record(ctx context.Context, rec *model.UsageRecord) error
	// GetByID returns a single record.
	GetByID(ctx context.Context, id string) (*model.UsageRecord, error)
	// GetRecent returns the last N records, newest first.
	GetRecent(ctx context.Context, limit int) ([]model.UsageRecord, error)
	// GetDailyStats returns aggregated stats grouped by day, newest first.
	GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error)
}
