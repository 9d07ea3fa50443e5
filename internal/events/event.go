// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"tradeportal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Orders Domain Events
// =============================================================================

// QuotationSent is published when sales sends a draft quotation to the
// customer for the first time.
type QuotationSent struct {
	BaseEvent
	OrderID       uuid.UUID `json:"orderId"`
	TenantID      uuid.UUID `json:"tenantId"`
	CustomerID    uuid.UUID `json:"customerId"`
	ActorID       uuid.UUID `json:"actorId"`
	ActorName     string    `json:"actorName"`
	Message       string    `json:"message,omitempty"`
	OrderTotal    string    `json:"orderTotal"`
	RevisionCount int       `json:"revisionCount"`
}

func (e QuotationSent) EventName() string { return "orders.quotation.sent" }

// QuotationAccepted is published when the customer accepts the standing
// quotation, ending the negotiation.
type QuotationAccepted struct {
	BaseEvent
	OrderID    uuid.UUID `json:"orderId"`
	TenantID   uuid.UUID `json:"tenantId"`
	CustomerID uuid.UUID `json:"customerId"`
	ActorID    uuid.UUID `json:"actorId"`
	ActorName  string    `json:"actorName"`
	OrderTotal string    `json:"orderTotal"`
}

func (e QuotationAccepted) EventName() string { return "orders.quotation.accepted" }

// QuotationRejected is published when the customer declines the quotation.
type QuotationRejected struct {
	BaseEvent
	OrderID    uuid.UUID `json:"orderId"`
	TenantID   uuid.UUID `json:"tenantId"`
	CustomerID uuid.UUID `json:"customerId"`
	ActorID    uuid.UUID `json:"actorId"`
	ActorName  string    `json:"actorName"`
	Reason     string    `json:"reason,omitempty"`
}

func (e QuotationRejected) EventName() string { return "orders.quotation.rejected" }

// QuotationRevised is published when sales sends an updated quotation during
// an active negotiation.
type QuotationRevised struct {
	BaseEvent
	OrderID       uuid.UUID `json:"orderId"`
	TenantID      uuid.UUID `json:"tenantId"`
	CustomerID    uuid.UUID `json:"customerId"`
	ActorID       uuid.UUID `json:"actorId"`
	ActorName     string    `json:"actorName"`
	RevisionID    uuid.UUID `json:"revisionId"`
	RevisionCount int       `json:"revisionCount"`
	OrderTotal    string    `json:"orderTotal"`
	Notes         string    `json:"notes,omitempty"`
}

func (e QuotationRevised) EventName() string { return "orders.quotation.revised" }

// QuotationCountered is published when the customer proposes changes to the
// standing quotation.
type QuotationCountered struct {
	BaseEvent
	OrderID       uuid.UUID `json:"orderId"`
	TenantID      uuid.UUID `json:"tenantId"`
	CustomerID    uuid.UUID `json:"customerId"`
	ActorID       uuid.UUID `json:"actorId"`
	ActorName     string    `json:"actorName"`
	RevisionID    uuid.UUID `json:"revisionId"`
	RevisionCount int       `json:"revisionCount"`
	OrderTotal    string    `json:"orderTotal"`
	Notes         string    `json:"notes,omitempty"`
}

func (e QuotationCountered) EventName() string { return "orders.quotation.countered" }

// ShareLinkCreated is published when sales issues a public share link for a
// quotation.
type ShareLinkCreated struct {
	BaseEvent
	OrderID    uuid.UUID `json:"orderId"`
	TenantID   uuid.UUID `json:"tenantId"`
	CustomerID uuid.UUID `json:"customerId"`
	ActorID    uuid.UUID `json:"actorId"`
	ShareURL   string    `json:"shareUrl"`
}

func (e ShareLinkCreated) EventName() string { return "orders.share.created" }

// =============================================================================
// Scheduler-Driven Events
// =============================================================================

// QuotationFollowUpDue is published by the scheduler worker when a follow-up
// reminder fires and the quotation is still awaiting a customer response.
type QuotationFollowUpDue struct {
	BaseEvent
	OrderID    uuid.UUID `json:"orderId"`
	TenantID   uuid.UUID `json:"tenantId"`
	CustomerID uuid.UUID `json:"customerId"`
	OrderTotal string    `json:"orderTotal"`
}

func (e QuotationFollowUpDue) EventName() string { return "orders.quotation.followup.due" }

// NotificationOutboxDue is published by the scheduler worker when a claimed
// outbox record is ready for delivery.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
	TenantID uuid.UUID `json:"tenantId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
