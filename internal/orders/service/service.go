// Package service orchestrates order negotiation: it loads aggregates, runs
// the domain operations, persists the result, and publishes events. All
// pricing and transition rules live in the domain package.
package service

import (
	"context"
	"time"

	"tradeportal_backend/internal/events"
	"tradeportal_backend/internal/orders/domain"
	"tradeportal_backend/internal/orders/repository"
	"tradeportal_backend/internal/orders/transport"
	"tradeportal_backend/platform/apperr"
	"tradeportal_backend/platform/config"
	"tradeportal_backend/platform/logger"

	"github.com/google/uuid"
)

// Service provides business logic for orders.
type Service struct {
	repo     *repository.Repository
	log      *logger.Logger
	shareCfg config.ShareConfig
	eventBus events.Bus       // optional; nil means no event publishing
	idem     IdempotencyStore // optional; nil disables the idempotency-key guard
}

// New creates a new orders service.
func New(repo *repository.Repository, log *logger.Logger, shareCfg config.ShareConfig) *Service {
	return &Service{repo: repo, log: log, shareCfg: shareCfg}
}

// SetEventBus injects the event bus (set after construction to break circular deps).
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// SetIdempotencyStore injects the store backing the Idempotency-Key guard.
func (s *Service) SetIdempotencyStore(store IdempotencyStore) {
	s.idem = store
}

// CreateDraft creates a draft order, optionally with initial items.
func (s *Service) CreateDraft(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, req transport.CreateOrderRequest) (*transport.OrderResponse, error) {
	if err := requireSales(actor); err != nil {
		return nil, err
	}

	now := time.Now()
	order := domain.NewDraft(uuid.New(), tenantID, req.CustomerID, now)

	for _, it := range req.Items {
		next, _, err := domain.AddItem(order, toItemInput(it), now)
		if err != nil {
			return nil, err
		}
		order = next
	}

	if err := s.repo.Create(ctx, &order); err != nil {
		return nil, err
	}

	return toOrderResponse(&order, actor.Role == domain.RoleSales), nil
}

// GetOrder loads one order. Customers can only see their own orders; internal
// revision notes are stripped for them.
func (s *Service) GetOrder(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID) (*transport.OrderResponse, error) {
	order, err := s.loadForActor(ctx, tenantID, actor, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order, actor.Role == domain.RoleSales), nil
}

// ListOrders lists orders for a tenant. Customers are always scoped to their
// own orders regardless of the requested filter.
func (s *Service) ListOrders(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, req transport.ListOrdersRequest) (*transport.ListOrdersResponse, error) {
	params := repository.ListParams{
		TenantID:  tenantID,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}

	if req.Status != "" {
		params.Status = &req.Status
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, apperr.Validation("invalid customer id")
		}
		params.CustomerID = &customerID
	}
	if actor.Role == domain.RoleCustomer {
		own := actor.ID
		params.CustomerID = &own
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return toListResponse(result), nil
}

// AddOrderItem adds a product line to a draft order.
func (s *Service) AddOrderItem(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, req transport.NewItemRequest) (*transport.OrderResponse, error) {
	return s.editDraft(ctx, tenantID, actor, orderID, func(o domain.Order, now time.Time) (domain.Order, error) {
		next, _, err := domain.AddItem(o, toItemInput(req), now)
		return next, err
	})
}

// RemoveOrderItem removes a product line from a draft order.
func (s *Service) RemoveOrderItem(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, lineNumber int) (*transport.OrderResponse, error) {
	return s.editDraft(ctx, tenantID, actor, orderID, func(o domain.Order, now time.Time) (domain.Order, error) {
		return domain.RemoveItem(o, lineNumber, now)
	})
}

// ChangeItemQuantity changes the quantity of a draft order line.
func (s *Service) ChangeItemQuantity(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, lineNumber int, req transport.ChangeQuantityRequest) (*transport.OrderResponse, error) {
	return s.editDraft(ctx, tenantID, actor, orderID, func(o domain.Order, now time.Time) (domain.Order, error) {
		return domain.ChangeItemQuantity(o, lineNumber, req.Quantity, now)
	})
}

// AddCartDiscount applies an order-level discount to a draft.
func (s *Service) AddCartDiscount(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, req transport.CartDiscountRequest) (*transport.OrderResponse, error) {
	return s.editDraft(ctx, tenantID, actor, orderID, func(o domain.Order, now time.Time) (domain.Order, error) {
		return domain.AddCartDiscount(o, actor, toDiscountInput(req), now)
	})
}

// RemoveCartDiscount removes an order-level discount from a draft.
func (s *Service) RemoveCartDiscount(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID, discountID uuid.UUID) (*transport.OrderResponse, error) {
	return s.editDraft(ctx, tenantID, actor, orderID, func(o domain.Order, now time.Time) (domain.Order, error) {
		return domain.RemoveCartDiscount(o, discountID, now)
	})
}

// ApplyLineAdjustment applies a price override or discount to a draft line.
func (s *Service) ApplyLineAdjustment(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, req transport.LineAdjustmentRequest) (*transport.OrderResponse, error) {
	return s.editDraft(ctx, tenantID, actor, orderID, func(o domain.Order, now time.Time) (domain.Order, error) {
		next, _, err := domain.ApplyLineAdjustment(o, actor, toAdjustmentInput(req), now)
		return next, err
	})
}

// SetShippingCost sets the shipping cost on a draft order.
func (s *Service) SetShippingCost(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, req transport.SetShippingRequest) (*transport.OrderResponse, error) {
	return s.editDraft(ctx, tenantID, actor, orderID, func(o domain.Order, now time.Time) (domain.Order, error) {
		return domain.SetShippingCost(o, req.ShippingCost, now)
	})
}

// editDraft runs one draft composition edit: load, mutate, save. Draft edits
// are a sales affair; customers only get to propose changes through counter
// rounds once the quotation is out.
func (s *Service) editDraft(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, edit func(domain.Order, time.Time) (domain.Order, error)) (*transport.OrderResponse, error) {
	if err := requireSales(actor); err != nil {
		return nil, err
	}

	order, err := s.repo.GetByID(ctx, orderID, tenantID)
	if err != nil {
		return nil, err
	}

	next, err := edit(*order, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &next); err != nil {
		return nil, err
	}
	return toOrderResponse(&next, true), nil
}

// loadForActor loads an order and enforces customer ownership. Sales users
// see every order in their tenant.
func (s *Service) loadForActor(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID, tenantID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleCustomer && order.CustomerID != actor.ID {
		return nil, apperr.Forbidden("order belongs to another customer")
	}
	return order, nil
}

func requireSales(actor domain.Actor) error {
	if actor.Role != domain.RoleSales {
		return apperr.Forbidden("sales role required")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, event)
	}
}
