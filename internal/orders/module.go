// Package orders provides the order quotation negotiation domain module.
package orders

import (
	apphttp "tradeportal_backend/internal/http"
	"tradeportal_backend/internal/orders/handler"
	"tradeportal_backend/internal/orders/repository"
	"tradeportal_backend/internal/orders/service"
	"tradeportal_backend/platform/config"
	"tradeportal_backend/platform/events"
	"tradeportal_backend/platform/logger"
	"tradeportal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module represents the orders domain module
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	service       *service.Service
	repository    *repository.Repository
}

// NewModule creates a new orders module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger, shareCfg config.ShareConfig) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log, shareCfg)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)
	ph := handler.NewPublicHandler(svc)

	return &Module{
		handler:       h,
		publicHandler: ph,
		service:       svc,
		repository:    repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "orders"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the persistence layer for read-side consumers.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// SetIdempotencyRedis enables duplicate-request detection for negotiation
// actions. Without it, Idempotency-Key headers are accepted but not enforced.
func (m *Module) SetIdempotencyRedis(client *redis.Client) {
	m.service.SetIdempotencyStore(service.NewRedisIdempotencyStore(client))
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	orders := ctx.Protected.Group("/orders")
	m.handler.RegisterRoutes(orders)

	// Public share routes: no auth middleware, stricter rate limit
	publicOrders := ctx.V1.Group("/public/orders")
	publicOrders.Use(ctx.PublicRateLimiter.RateLimit())
	m.publicHandler.RegisterRoutes(publicOrders)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
