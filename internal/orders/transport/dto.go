package transport

import (
	"time"

	"tradeportal_backend/platform/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// NewItemRequest is the input for adding a product line. Prices accept both
// JSON numbers and strings; amounts and sign are checked by the order engine.
type NewItemRequest struct {
	EntityCode string          `json:"entityCode" validate:"required,min=1,max=64"`
	Quantity   int             `json:"quantity" validate:"required,min=1"`
	ListPrice  decimal.Decimal `json:"listPrice"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	VATRate    decimal.Decimal `json:"vatRate"`
	IsGiftLine bool            `json:"isGiftLine"`
}

// CreateOrderRequest is the request body for creating a draft order.
type CreateOrderRequest struct {
	CustomerID uuid.UUID        `json:"customerId" validate:"required"`
	Items      []NewItemRequest `json:"items" validate:"omitempty,dive"`
}

// ChangeQuantityRequest is the request body for changing a line quantity.
type ChangeQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartDiscountRequest is the input for an order-level discount.
type CartDiscountRequest struct {
	Type        string          `json:"type" validate:"required,oneof=percentage fixed"`
	Value       decimal.Decimal `json:"value"`
	Reason      string          `json:"reason" validate:"required"`
	Description string          `json:"description" validate:"omitempty,max=500"`
}

// LineAdjustmentRequest is the input for a line-level price adjustment.
type LineAdjustmentRequest struct {
	LineNumber  int             `json:"lineNumber" validate:"required,min=1"`
	Type        string          `json:"type" validate:"required,oneof=price_override discount_percentage discount_fixed"`
	NewValue    decimal.Decimal `json:"newValue"`
	Reason      string          `json:"reason" validate:"required"`
	Description string          `json:"description" validate:"omitempty,max=500"`
}

// SetShippingRequest is the request body for setting the shipping cost.
type SetShippingRequest struct {
	ShippingCost money.Money `json:"shippingCost"`
}

// SendQuotationRequest is the request body for sending a draft to the customer.
type SendQuotationRequest struct {
	Message string `json:"message" validate:"omitempty,max=2000"`
}

// RejectQuotationRequest is the request body for rejecting a quotation.
type RejectQuotationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=2000"`
}

// QtyChangeRequest is a quantity edit inside a revision delta.
type QtyChangeRequest struct {
	LineNumber  int `json:"lineNumber" validate:"required,min=1"`
	NewQuantity int `json:"newQuantity" validate:"required,min=1"`
}

// RevisionDeltaRequest is the change set for a revise or counter round.
type RevisionDeltaRequest struct {
	CartDiscountsAdded   []CartDiscountRequest   `json:"cartDiscountsAdded" validate:"omitempty,dive"`
	LineAdjustmentsAdded []LineAdjustmentRequest `json:"lineAdjustmentsAdded" validate:"omitempty,dive"`
	ItemsAdded           []NewItemRequest        `json:"itemsAdded" validate:"omitempty,dive"`
	ItemsRemoved         []int                   `json:"itemsRemoved" validate:"omitempty,dive,min=1"`
	ItemsQtyChanged      []QtyChangeRequest      `json:"itemsQtyChanged" validate:"omitempty,dive"`
	Notes                string                  `json:"notes" validate:"omitempty,max=2000"`
	InternalNotes        string                  `json:"internalNotes" validate:"omitempty,max=2000"`
}

// ListOrdersRequest defines the query parameters for listing orders.
type ListOrdersRequest struct {
	CustomerID string `form:"customerId" validate:"omitempty,uuid"`
	Status     string `form:"status" validate:"omitempty,oneof=draft pending_quotation quotation_sent accepted rejected confirmed cancelled"`
	SortBy     string `form:"sortBy" validate:"omitempty,oneof=status orderTotal createdAt updatedAt"`
	SortOrder  string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// LineAdjustmentResponse is one entry in a line's adjustment history.
type LineAdjustmentResponse struct {
	AdjustmentID  uuid.UUID       `json:"adjustmentId"`
	LineNumber    int             `json:"lineNumber"`
	Type          string          `json:"type"`
	OriginalValue decimal.Decimal `json:"originalValue"`
	NewValue      decimal.Decimal `json:"newValue"`
	Reason        string          `json:"reason"`
	Description   string          `json:"description,omitempty"`
	AppliedBy     uuid.UUID       `json:"appliedBy"`
	AppliedAt     time.Time       `json:"appliedAt"`
}

// OrderItemResponse is one priced product line. List and unit prices carry
// full precision; the line amounts are fixed to two decimals.
type OrderItemResponse struct {
	LineNumber  int                      `json:"lineNumber"`
	EntityCode  string                   `json:"entityCode"`
	Quantity    int                      `json:"quantity"`
	ListPrice   decimal.Decimal          `json:"listPrice"`
	UnitPrice   decimal.Decimal          `json:"unitPrice"`
	VATRate     decimal.Decimal          `json:"vatRate"`
	IsGiftLine  bool                     `json:"isGiftLine"`
	LineGross   money.Money              `json:"lineGross"`
	LineNet     money.Money              `json:"lineNet"`
	LineVAT     money.Money              `json:"lineVat"`
	LineTotal   money.Money              `json:"lineTotal"`
	Adjustments []LineAdjustmentResponse `json:"adjustments"`
}

// CartDiscountResponse is one order-level discount.
type CartDiscountResponse struct {
	DiscountID  uuid.UUID       `json:"discountId"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Reason      string          `json:"reason"`
	Description string          `json:"description,omitempty"`
	AppliedBy   uuid.UUID       `json:"appliedBy"`
	AppliedAt   time.Time       `json:"appliedAt"`
}

// RevisionItemAddedResponse is an item introduced by a revision.
type RevisionItemAddedResponse struct {
	LineNumber int             `json:"lineNumber"`
	EntityCode string          `json:"entityCode"`
	Quantity   int             `json:"quantity"`
	ListPrice  decimal.Decimal `json:"listPrice"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	VATRate    decimal.Decimal `json:"vatRate"`
	IsGiftLine bool            `json:"isGiftLine"`
}

// RevisionItemRemovedResponse is an item dropped by a revision.
type RevisionItemRemovedResponse struct {
	LineNumber int    `json:"lineNumber"`
	EntityCode string `json:"entityCode"`
}

// QtyChangeResponse is a quantity edit recorded by a revision.
type QtyChangeResponse struct {
	LineNumber int `json:"lineNumber"`
	OldQty     int `json:"oldQty"`
	NewQty     int `json:"newQty"`
}

// RevisionResponse is one negotiation round from the ledger. InternalNotes is
// only present for sales users.
type RevisionResponse struct {
	RevisionID           uuid.UUID                     `json:"revisionId"`
	CreatedBy            uuid.UUID                     `json:"createdBy"`
	CreatedByName        string                        `json:"createdByName"`
	ActorRole            string                        `json:"actorRole"`
	CreatedAt            time.Time                     `json:"createdAt"`
	CartDiscountsAdded   []CartDiscountResponse        `json:"cartDiscountsAdded"`
	LineAdjustmentsAdded []LineAdjustmentResponse      `json:"lineAdjustmentsAdded"`
	ItemsAdded           []RevisionItemAddedResponse   `json:"itemsAdded"`
	ItemsRemoved         []RevisionItemRemovedResponse `json:"itemsRemoved"`
	ItemsQtyChanged      []QtyChangeResponse           `json:"itemsQtyChanged"`
	Notes                string                        `json:"notes,omitempty"`
	InternalNotes        string                        `json:"internalNotes,omitempty"`
}

// OrderResponse is the full order aggregate.
type OrderResponse struct {
	OrderID         uuid.UUID              `json:"orderId"`
	CustomerID      uuid.UUID              `json:"customerId"`
	Status          string                 `json:"status"`
	Items           []OrderItemResponse    `json:"items"`
	CartDiscounts   []CartDiscountResponse `json:"cartDiscounts"`
	ShippingCost    money.Money            `json:"shippingCost"`
	SubtotalGross   money.Money            `json:"subtotalGross"`
	SubtotalNet     money.Money            `json:"subtotalNet"`
	TotalDiscount   money.Money            `json:"totalDiscount"`
	TotalVAT        money.Money            `json:"totalVat"`
	OrderTotal      money.Money            `json:"orderTotal"`
	Revisions       []RevisionResponse     `json:"revisions"`
	RejectionReason string                 `json:"rejectionReason,omitempty"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// OrderSummaryResponse is a list row.
type OrderSummaryResponse struct {
	OrderID       uuid.UUID   `json:"orderId"`
	CustomerID    uuid.UUID   `json:"customerId"`
	Status        string      `json:"status"`
	SubtotalGross money.Money `json:"subtotalGross"`
	SubtotalNet   money.Money `json:"subtotalNet"`
	TotalDiscount money.Money `json:"totalDiscount"`
	TotalVAT      money.Money `json:"totalVat"`
	OrderTotal    money.Money `json:"orderTotal"`
	ItemCount     int         `json:"itemCount"`
	RevisionCount int         `json:"revisionCount"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// ListOrdersResponse is the paginated list envelope.
type ListOrdersResponse struct {
	Items      []OrderSummaryResponse `json:"items"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	TotalPages int                    `json:"totalPages"`
}

// ShareLinkResponse carries a freshly created public share link.
type ShareLinkResponse struct {
	ShareURL  string    `json:"shareUrl"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
