package service

import (
	"context"
	"time"

	"tradeportal_backend/internal/events"
	"tradeportal_backend/internal/orders/domain"
	"tradeportal_backend/internal/orders/transport"
	"tradeportal_backend/platform/sanitize"

	"github.com/google/uuid"
)

// SendQuotation moves a draft to quotation_sent and opens the revision ledger.
func (s *Service) SendQuotation(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, req transport.SendQuotationRequest, idempotencyKey string) (*transport.OrderResponse, error) {
	message := sanitize.Text(req.Message)
	order, err := s.applyAction(ctx, tenantID, actor, orderID, domain.Send{Message: message}, idempotencyKey)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.QuotationSent{
		BaseEvent:     events.NewBaseEvent(),
		OrderID:       order.OrderID,
		TenantID:      tenantID,
		CustomerID:    order.CustomerID,
		ActorID:       actor.ID,
		ActorName:     actor.Name,
		Message:       message,
		OrderTotal:    order.OrderTotal.String(),
		RevisionCount: len(order.Revisions),
	})

	return toOrderResponse(order, actor.Role == domain.RoleSales), nil
}

// AcceptQuotation closes the negotiation in the customer's favour.
func (s *Service) AcceptQuotation(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, idempotencyKey string) (*transport.OrderResponse, error) {
	order, err := s.applyAction(ctx, tenantID, actor, orderID, domain.Accept{}, idempotencyKey)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.QuotationAccepted{
		BaseEvent:  events.NewBaseEvent(),
		OrderID:    order.OrderID,
		TenantID:   tenantID,
		CustomerID: order.CustomerID,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		OrderTotal: order.OrderTotal.String(),
	})

	return toOrderResponse(order, actor.Role == domain.RoleSales), nil
}

// RejectQuotation closes the negotiation with an optional reason.
func (s *Service) RejectQuotation(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, req transport.RejectQuotationRequest, idempotencyKey string) (*transport.OrderResponse, error) {
	reason := sanitize.Text(req.Reason)
	order, err := s.applyAction(ctx, tenantID, actor, orderID, domain.Reject{Reason: reason}, idempotencyKey)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.QuotationRejected{
		BaseEvent:  events.NewBaseEvent(),
		OrderID:    order.OrderID,
		TenantID:   tenantID,
		CustomerID: order.CustomerID,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Reason:     reason,
	})

	return toOrderResponse(order, actor.Role == domain.RoleSales), nil
}

// ReviseQuotation applies a sales delta as a new negotiation round.
func (s *Service) ReviseQuotation(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, req transport.RevisionDeltaRequest, idempotencyKey string) (*transport.OrderResponse, error) {
	order, err := s.applyAction(ctx, tenantID, actor, orderID, domain.Revise{Delta: toDelta(req)}, idempotencyKey)
	if err != nil {
		return nil, err
	}

	last := order.Revisions[len(order.Revisions)-1]
	s.publish(ctx, events.QuotationRevised{
		BaseEvent:     events.NewBaseEvent(),
		OrderID:       order.OrderID,
		TenantID:      tenantID,
		CustomerID:    order.CustomerID,
		ActorID:       actor.ID,
		ActorName:     actor.Name,
		RevisionID:    last.RevisionID,
		RevisionCount: len(order.Revisions),
		OrderTotal:    order.OrderTotal.String(),
		Notes:         last.Notes,
	})

	return toOrderResponse(order, actor.Role == domain.RoleSales), nil
}

// CounterQuotation applies a customer delta as a new negotiation round.
func (s *Service) CounterQuotation(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, req transport.RevisionDeltaRequest, idempotencyKey string) (*transport.OrderResponse, error) {
	order, err := s.applyAction(ctx, tenantID, actor, orderID, domain.Counter{Delta: toDelta(req)}, idempotencyKey)
	if err != nil {
		return nil, err
	}

	last := order.Revisions[len(order.Revisions)-1]
	s.publish(ctx, events.QuotationCountered{
		BaseEvent:     events.NewBaseEvent(),
		OrderID:       order.OrderID,
		TenantID:      tenantID,
		CustomerID:    order.CustomerID,
		ActorID:       actor.ID,
		ActorName:     actor.Name,
		RevisionID:    last.RevisionID,
		RevisionCount: len(order.Revisions),
		OrderTotal:    order.OrderTotal.String(),
		Notes:         last.Notes,
	})

	return toOrderResponse(order, actor.Role == domain.RoleSales), nil
}

// ListRevisions returns the negotiation ledger for an order.
func (s *Service) ListRevisions(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID) ([]transport.RevisionResponse, error) {
	order, err := s.loadForActor(ctx, tenantID, actor, orderID)
	if err != nil {
		return nil, err
	}

	includeInternal := actor.Role == domain.RoleSales
	revisions := make([]transport.RevisionResponse, 0, len(order.Revisions))
	for _, rev := range order.Revisions {
		revisions = append(revisions, toRevisionResponse(rev, includeInternal))
	}
	return revisions, nil
}

// applyAction runs one negotiation action end to end: idempotency guard,
// load with ownership check, state machine, compare-and-swap save. A lost
// write race surfaces as a conflict; the caller retries against the fresh
// state or gives up.
func (s *Service) applyAction(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID, action domain.Action, idempotencyKey string) (*domain.Order, error) {
	if err := s.reserveIdempotencyKey(ctx, orderID, actor.ID, action.Name(), idempotencyKey); err != nil {
		return nil, err
	}

	order, err := s.loadForActor(ctx, tenantID, actor, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	next, err := domain.Apply(*order, action, actor, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &next); err != nil {
		return nil, err
	}

	s.log.OrderAction(orderID.String(), action.Name(), string(actor.Role), string(from), string(next.Status))
	return &next, nil
}
