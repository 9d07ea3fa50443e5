package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradeportal_backend/internal/archive"
	"tradeportal_backend/internal/email"
	apphttp "tradeportal_backend/internal/http"
	"tradeportal_backend/internal/http/router"
	"tradeportal_backend/internal/notification"
	"tradeportal_backend/internal/notification/outbox"
	"tradeportal_backend/internal/orders"
	"tradeportal_backend/internal/scheduler"
	"tradeportal_backend/platform/config"
	"tradeportal_backend/platform/db"
	"tradeportal_backend/platform/events"
	"tradeportal_backend/platform/logger"
	"tradeportal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	ordersModule := orders.NewModule(pool, eventBus, val, log, cfg)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(pool, sender, cfg, log)
	notificationModule.SetNotificationOutbox(outbox.New(pool))
	notificationModule.RegisterHandlers(eventBus)

	followUpScheduler, closeFollowUp := initFollowUpScheduler(cfg, log)
	if followUpScheduler != nil {
		defer closeFollowUp()
		notificationModule.SetFollowUpScheduler(followUpScheduler)
	}

	if idempotencyRedis := initIdempotencyRedis(cfg, log); idempotencyRedis != nil {
		defer idempotencyRedis.Close()
		ordersModule.SetIdempotencyRedis(idempotencyRedis)
	}

	// Revision archive uploads one JSON snapshot per negotiation round
	if cfg.IsArchiveEnabled() {
		archiveModule, err := archive.New(cfg, ordersModule.Repository(), log)
		if err != nil {
			log.Error("failed to initialize revision archive", "error", err)
			panic("failed to initialize revision archive: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure archive bucket", 5, 2*time.Second, func() error {
			return archiveModule.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure archive bucket exists", "error", err)
			panic("failed to ensure archive bucket exists: " + err.Error())
		}
		archiveModule.RegisterHandlers(eventBus)
		log.Info("revision archive enabled", "bucket", cfg.GetMinioBucketRevisionArchives())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			ordersModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initFollowUpScheduler(cfg *config.Config, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisAddr() == "" {
		log.Warn("REDIS_ADDR is empty; quotation follow-up reminders disabled")
		return nil, nil
	}

	client := scheduler.NewClient(cfg)
	return client, func() {
		_ = client.Close()
	}
}

func initIdempotencyRedis(cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisAddr() == "" {
		log.Warn("REDIS_ADDR is empty; Idempotency-Key headers accepted but not enforced")
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
		DB:       cfg.GetRedisDB(),
	})
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
