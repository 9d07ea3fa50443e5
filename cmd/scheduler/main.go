package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"tradeportal_backend/internal/email"
	"tradeportal_backend/internal/notification"
	"tradeportal_backend/internal/notification/outbox"
	"tradeportal_backend/internal/scheduler"
	"tradeportal_backend/platform/config"
	"tradeportal_backend/platform/db"
	"tradeportal_backend/platform/events"
	"tradeportal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// The worker re-publishes due tasks on this process's bus; the
	// notification module picks them up and delivers outbox emails here.
	notificationModule := notification.New(pool, sender, cfg, log)
	notificationModule.SetNotificationOutbox(outbox.New(pool))
	notificationModule.RegisterHandlers(eventBus)

	dispatcher := scheduler.NewOutboxDispatcher(cfg, cfg, pool, log)
	defer func() { _ = dispatcher.Close() }()

	sweepInterval := getDurationEnv("OUTBOX_RETENTION_SWEEP_INTERVAL", time.Hour)
	succeededRetention := time.Duration(getPositiveIntEnv("OUTBOX_SUCCEEDED_RETENTION_DAYS", 14)) * 24 * time.Hour
	failedRetention := time.Duration(getPositiveIntEnv("OUTBOX_FAILED_RETENTION_DAYS", 30)) * 24 * time.Hour
	retention := scheduler.NewOutboxRetention(pool, log, sweepInterval, succeededRetention, failedRetention)

	worker := scheduler.NewWorker(cfg, cfg, pool, eventBus, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatcher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		retention.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("scheduler stopped with error", "error", err)
		panic("scheduler stopped with error: " + err.Error())
	}
	log.Info("scheduler shut down")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
