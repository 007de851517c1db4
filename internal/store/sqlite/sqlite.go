package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nulzo/neurix/internal/store"
	"github.com/nulzo/neurix/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // *sqlx.DB or *sqlx.Tx
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &SqliteRepository{
		db:       r.db,
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// rollback, but keep the original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Usage() store.UsageRepository {
	return &usageRepo{db: r.executor}
}

type usageRepo struct {
	db DB
}

func (r *usageRepo) Record(ctx context.Context, rec *model.UsageRecord) error {
	query := `
	INSERT INTO usage_records (
		id, source, client_hash, model, upstream_model,
		status_code, succeeded, latency_ms,
		prompt_tokens, completion_tokens, total_tokens, created_at
	) VALUES (
		:id, :source, :client_hash, :model, :upstream_model,
		:status_code, :succeeded, :latency_ms,
		:prompt_tokens, :completion_tokens, :total_tokens, :created_at
	)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

func (r *usageRepo) GetByID(ctx context.Context, id string) (*model.UsageRecord, error) {
	var rec model.UsageRecord
	if err := r.db.GetContext(ctx, &rec, `SELECT * FROM usage_records WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *usageRepo) GetRecent(ctx context.Context, limit int) ([]model.UsageRecord, error) {
	var recs []model.UsageRecord
	err := r.db.SelectContext(ctx, &recs, `SELECT * FROM usage_records ORDER BY created_at DESC LIMIT ?`, limit)
	return recs, err
}

func (r *usageRepo) GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error) {
	var stats []model.DailyStats
	query := `
		SELECT
			DATE(created_at) as date,
			COUNT(*) as total_requests,
			COALESCE(SUM(CASE WHEN succeeded = 0 THEN 1 ELSE 0 END), 0) as failed_requests,
			COALESCE(SUM(total_tokens), 0) as total_tokens,
			COALESCE(AVG(latency_ms), 0) as avg_latency
		FROM usage_records
		WHERE created_at >= DATE('now', ?)
		GROUP BY date
		ORDER BY date DESC
	`
	// SQLite date offset format is '-7 days'
	err := r.db.SelectContext(ctx, &stats, query, fmt.Sprintf("-%d days", days))
	return stats, err
}
