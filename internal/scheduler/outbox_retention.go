package scheduler

import (
	"context"
	"time"

	"tradeportal_backend/internal/notification/outbox"
	"tradeportal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultOutboxRetentionSweepInterval = time.Hour
	defaultSucceededRetention           = 14 * 24 * time.Hour
	defaultFailedRetention              = 30 * 24 * time.Hour
)

// OutboxRetention periodically removes finished outbox rows so the table
// does not grow without bound. Failed rows are kept longer for inspection.
type OutboxRetention struct {
	repo               *outbox.Repository
	log                *logger.Logger
	interval           time.Duration
	succeededRetention time.Duration
	failedRetention    time.Duration
}

func NewOutboxRetention(pool *pgxpool.Pool, log *logger.Logger, interval, succeededRetention, failedRetention time.Duration) *OutboxRetention {
	if interval <= 0 {
		interval = defaultOutboxRetentionSweepInterval
	}
	if succeededRetention <= 0 {
		succeededRetention = defaultSucceededRetention
	}
	if failedRetention <= 0 {
		failedRetention = defaultFailedRetention
	}

	return &OutboxRetention{
		repo:               outbox.New(pool),
		log:                log,
		interval:           interval,
		succeededRetention: succeededRetention,
		failedRetention:    failedRetention,
	}
}

func (c *OutboxRetention) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.sweep(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *OutboxRetention) sweep(ctx context.Context) {
	now := time.Now()
	succeededBefore := now.Add(-c.succeededRetention)
	failedBefore := now.Add(-c.failedRetention)

	deleted, err := c.repo.DeleteFinishedBefore(ctx, succeededBefore, failedBefore)
	if err != nil {
		c.log.Warn("outbox retention sweep failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("outbox retention sweep deleted finished rows", "deleted", deleted)
	}
}
