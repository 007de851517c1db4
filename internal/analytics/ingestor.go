package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/nulzo/neurix/internal/store"
	"github.com/nulzo/neurix/internal/store/model"
	"go.uber.org/zap"
)

// Ingestor persists usage records off the request path.
type Ingestor interface {
	Log(rec *model.UsageRecord)
	Start(ctx context.Context)
	// Stop flushes buffered records and waits for the worker to exit.
	Stop()
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	records   chan *model.UsageRecord
	batchSize int
	flushTime time.Duration

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

func NewIngestor(logger *zap.Logger, repo store.Repository) Ingestor {
	return newIngestor(logger, repo, 10000, 50, 5*time.Second)
}

func newIngestor(logger *zap.Logger, repo store.Repository, buffer, batchSize int, flushTime time.Duration) *ingestor {
	return &ingestor{
		logger:    logger,
		repo:      repo,
		records:   make(chan *model.UsageRecord, buffer),
		batchSize: batchSize,
		flushTime: flushTime,
		done:      make(chan struct{}),
	}
}

// Log never blocks: when the buffer is full the record is dropped.
func (i *ingestor) Log(rec *model.UsageRecord) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.stopped {
		return
	}

	select {
	case i.records <- rec:
	default:
		i.logger.Warn("Usage buffer full, dropping record", zap.String("id", rec.ID))
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

func (i *ingestor) Stop() {
	i.mu.Lock()
	if !i.stopped {
		i.stopped = true
		close(i.records)
	}
	i.mu.Unlock()
	<-i.done
}

func (i *ingestor) worker(ctx context.Context) {
	defer close(i.done)

	batch := make([]*model.UsageRecord, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		err := i.repo.WithTx(context.Background(), func(tx store.Repository) error {
			for _, rec := range batch {
				if err := tx.Usage().Record(context.Background(), rec); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			i.logger.Error("Failed to persist usage batch", zap.Int("records", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case rec, ok := <-i.records:
			if !ok {
				flush()
				return
			}
			batch = append(batch, rec)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			// drain what is already buffered
			for {
				select {
				case rec, ok := <-i.records:
					if !ok {
						flush()
						return
					}
					batch = append(batch, rec)
				default:
					flush()
					return
				}
			}
		}
	}
}
