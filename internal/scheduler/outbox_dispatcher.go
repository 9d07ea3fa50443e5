package scheduler

import (
	"context"
	"time"

	"tradeportal_backend/internal/notification/outbox"
	"tradeportal_backend/platform/config"
	"tradeportal_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPollInterval = 5 * time.Second

// OutboxDispatcher claims due pending outbox rows and enqueues delivery
// tasks. Claiming uses FOR UPDATE SKIP LOCKED, so multiple dispatcher
// replicas can run side by side.
type OutboxDispatcher struct {
	client       *asynq.Client
	repo         *outbox.Repository
	log          *logger.Logger
	pollInterval time.Duration
	batchSize    int
}

func NewOutboxDispatcher(redisCfg config.RedisConfig, cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) *OutboxDispatcher {
	pollInterval := cfg.GetOutboxPollInterval()
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	batchSize := cfg.GetOutboxBatchSize()
	if batchSize < 1 {
		batchSize = 50
	}

	return &OutboxDispatcher{
		client:       asynq.NewClient(redisClientOpt(redisCfg)),
		repo:         outbox.New(pool),
		log:          log,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

func (d *OutboxDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		records, err := d.repo.ClaimPending(ctx, d.batchSize)
		if err != nil {
			d.log.Warn("outbox claim failed", "error", err)
			continue
		}
		if len(records) == 0 {
			continue
		}

		for _, rec := range records {
			task, err := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{
				OutboxID: rec.ID.String(),
				TenantID: rec.TenantID.String(),
			})
			if err != nil {
				msg := err.Error()
				_ = d.repo.MarkPending(ctx, rec.ID, &msg)
				continue
			}

			_, err = d.client.EnqueueContext(ctx, task, asynq.ProcessAt(rec.RunAt), asynq.Queue(taskQueue))
			if err != nil {
				msg := err.Error()
				_ = d.repo.MarkPending(ctx, rec.ID, &msg)
				continue
			}
		}

		d.log.Debug("outbox batch dispatched", "count", len(records))
	}
}
