package scheduler

import (
	"context"

	"tradeportal_backend/internal/events"
	"tradeportal_backend/internal/orders/domain"
	ordersrepo "tradeportal_backend/internal/orders/repository"
	"tradeportal_backend/platform/apperr"
	"tradeportal_backend/platform/config"
	"tradeportal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	orders *ordersrepo.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(redisCfg config.RedisConfig, cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Worker {
	concurrency := cfg.GetWorkerConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(redisClientOpt(redisCfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			taskQueue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		orders: ordersrepo.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskQuotationFollowUp, w.handleQuotationFollowUp)
	mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)

	return w
}

// Run blocks until the context is cancelled or the asynq server fails.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
		return err
	}
	return nil
}

// handleQuotationFollowUp fires when a follow-up reminder comes due. The
// order is re-read and the reminder only goes out when the quotation is
// still awaiting a customer response, so replays and late deliveries are
// harmless.
func (w *Worker) handleQuotationFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseQuotationFollowUpPayload(task)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return err
	}
	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	order, err := w.orders.GetByID(ctx, orderID, tenantID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			w.log.Info("follow-up order no longer exists; reminder dropped", "orderId", orderID)
			return nil
		}
		return err
	}

	if order.Status != domain.StatusQuotationSent {
		w.log.Info("quotation already answered; follow-up skipped",
			"orderId", orderID, "status", string(order.Status))
		return nil
	}

	if w.bus == nil {
		return nil
	}

	w.bus.Publish(ctx, events.QuotationFollowUpDue{
		BaseEvent:  events.NewBaseEvent(),
		OrderID:    order.OrderID,
		TenantID:   order.TenantID,
		CustomerID: order.CustomerID,
		OrderTotal: order.OrderTotal.String(),
	})

	return nil
}

func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, events.NotificationOutboxDue{
		BaseEvent: events.NewBaseEvent(),
		OutboxID:  outboxID,
		TenantID:  tenantID,
	})
}
