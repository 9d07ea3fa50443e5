// Package scheduler provides asynq-backed background processing: quotation
// follow-up reminders and notification outbox delivery.
package scheduler

import (
	"context"
	"time"

	"tradeportal_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const taskQueue = "default"

// Client enqueues scheduled tasks. It satisfies the notification module's
// FollowUpScheduler interface.
type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(redisClientOpt(cfg))}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleQuotationFollowUp enqueues a follow-up reminder that fires at runAt.
func (c *Client) ScheduleQuotationFollowUp(ctx context.Context, orderID, tenantID, customerID uuid.UUID, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewQuotationFollowUpTask(QuotationFollowUpPayload{
		OrderID:    orderID.String(),
		TenantID:   tenantID.String(),
		CustomerID: customerID.String(),
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(taskQueue))
	return err
}

func redisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
		DB:       cfg.GetRedisDB(),
	}
}
