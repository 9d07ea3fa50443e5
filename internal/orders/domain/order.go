// Package domain holds the quotation negotiation core: the order aggregate,
// the financial calculators, the role-gated state machine, and the revision
// ledger. Everything in this package is pure; no I/O, no persistence, no
// transport. Callers load an Order, apply an operation, and persist the
// returned value; a failed operation leaves the input untouched.
package domain

import (
	"time"

	"tradeportal_backend/platform/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusPendingQuotation Status = "pending_quotation"
	StatusQuotationSent    Status = "quotation_sent"
	StatusAccepted         Status = "accepted"
	StatusRejected         Status = "rejected"
	StatusConfirmed        Status = "confirmed"
	StatusCancelled        Status = "cancelled"
)

var knownStatuses = map[Status]struct{}{
	StatusDraft:            {},
	StatusPendingQuotation: {},
	StatusQuotationSent:    {},
	StatusAccepted:         {},
	StatusRejected:         {},
	StatusConfirmed:        {},
	StatusCancelled:        {},
}

// terminalStatuses are states from which no negotiation action is legal.
// confirmed and cancelled are written by the fulfilment side of the platform
// after acceptance; this service never produces them but must respect them.
var terminalStatuses = map[Status]struct{}{
	StatusAccepted:  {},
	StatusRejected:  {},
	StatusConfirmed: {},
	StatusCancelled: {},
}

// Valid reports whether s is a known order status.
func (s Status) Valid() bool {
	_, ok := knownStatuses[s]
	return ok
}

// Terminal reports whether s ends the negotiation.
func (s Status) Terminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// Role identifies which side of the negotiation an actor is on.
type Role string

const (
	RoleSales    Role = "sales"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is a known actor role.
func (r Role) Valid() bool {
	return r == RoleSales || r == RoleCustomer
}

// Actor is the authenticated party performing an operation.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role Role
}

// DiscountType classifies a cart-level discount.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// AdjustmentType classifies a line-level price adjustment.
type AdjustmentType string

const (
	AdjustmentPriceOverride      AdjustmentType = "price_override"
	AdjustmentDiscountPercentage AdjustmentType = "discount_percentage"
	AdjustmentDiscountFixed      AdjustmentType = "discount_fixed"
)

// AdjustmentReason is the closed set of business reasons accepted for cart
// discounts and line adjustments. Unknown reasons are rejected at the
// boundary, never trusted from caller input.
type AdjustmentReason string

const (
	ReasonLoyaltyDiscount       AdjustmentReason = "loyalty_discount"
	ReasonVolumeDiscount        AdjustmentReason = "volume_discount"
	ReasonPromotion             AdjustmentReason = "promotion"
	ReasonPriceMatch            AdjustmentReason = "price_match"
	ReasonBackorderSubstitution AdjustmentReason = "backorder_substitution"
	ReasonShippingDamage        AdjustmentReason = "shipping_damage"
	ReasonGoodwill              AdjustmentReason = "goodwill"
	ReasonNegotiatedRate        AdjustmentReason = "negotiated_rate"
)

var knownAdjustmentReasons = map[AdjustmentReason]struct{}{
	ReasonLoyaltyDiscount:       {},
	ReasonVolumeDiscount:        {},
	ReasonPromotion:             {},
	ReasonPriceMatch:            {},
	ReasonBackorderSubstitution: {},
	ReasonShippingDamage:        {},
	ReasonGoodwill:              {},
	ReasonNegotiatedRate:        {},
}

// Valid reports whether r is an accepted business reason.
func (r AdjustmentReason) Valid() bool {
	_, ok := knownAdjustmentReasons[r]
	return ok
}

// LineItem is one priced product line on an order.
//
// ListPrice and UnitPrice are kept at full precision (bulk goods are often
// priced in fractions of a cent); the derived Line* amounts are the only
// rounded figures and are owned exclusively by the calculator.
type LineItem struct {
	LineNumber int
	EntityCode string
	Quantity   int
	ListPrice  decimal.Decimal
	UnitPrice  decimal.Decimal
	VATRate    decimal.Decimal
	IsGiftLine bool

	LineGross money.Money
	LineNet   money.Money
	LineVAT   money.Money
	LineTotal money.Money

	// Adjustments is the line's adjustment history, oldest first.
	Adjustments []LineAdjustment
}

// CartDiscount applies to the order as a whole rather than to one line.
type CartDiscount struct {
	DiscountID  uuid.UUID
	Type        DiscountType
	Value       decimal.Decimal
	Reason      AdjustmentReason
	Description string
	AppliedBy   uuid.UUID
	AppliedAt   time.Time
}

// LineAdjustment is a price override or discount applied to a single line.
// OriginalValue is captured at apply time: the unit price before a
// price_override, or the effective discount percentage against list price
// before a discount adjustment.
type LineAdjustment struct {
	AdjustmentID  uuid.UUID
	LineNumber    int
	Type          AdjustmentType
	OriginalValue decimal.Decimal
	NewValue      decimal.Decimal
	Reason        AdjustmentReason
	Description   string
	AppliedBy     uuid.UUID
	AppliedAt     time.Time
}

// QtyChange records a quantity edit inside a revision.
type QtyChange struct {
	LineNumber int
	OldQty     int
	NewQty     int
}

// RevisionItemAdded snapshots an item introduced by a revision. It carries
// the full pricing inputs so the ledger alone can reconstruct the item.
type RevisionItemAdded struct {
	LineNumber int
	EntityCode string
	Quantity   int
	ListPrice  decimal.Decimal
	UnitPrice  decimal.Decimal
	VATRate    decimal.Decimal
	IsGiftLine bool
}

// RevisionItemRemoved references an item dropped by a revision.
type RevisionItemRemoved struct {
	LineNumber int
	EntityCode string
}

// Revision is one immutable negotiation round. Entries are never edited,
// truncated, or reordered once appended.
type Revision struct {
	RevisionID    uuid.UUID
	CreatedBy     uuid.UUID
	CreatedByName string
	ActorRole     Role
	CreatedAt     time.Time

	CartDiscountsAdded   []CartDiscount
	LineAdjustmentsAdded []LineAdjustment
	ItemsAdded           []RevisionItemAdded
	ItemsRemoved         []RevisionItemRemoved
	ItemsQtyChanged      []QtyChange

	Notes         string
	InternalNotes string
}

// Order is the aggregate root for one commercial negotiation.
//
// SubtotalGross through OrderTotal are derived fields: after any mutating
// operation they equal the deterministic fold of Items + CartDiscounts +
// ShippingCost. They are never authored directly.
type Order struct {
	OrderID    uuid.UUID
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	Status     Status

	Items         []LineItem
	CartDiscounts []CartDiscount
	ShippingCost  money.Money

	SubtotalGross money.Money
	SubtotalNet   money.Money
	TotalDiscount money.Money
	TotalVAT      money.Money
	OrderTotal    money.Money

	Revisions       []Revision
	RejectionReason string

	// Version backs the repository's compare-and-swap write; the domain
	// never touches it.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

const lineNumberStep = 10

// NextLineNumber returns the line number for the next item: the highest
// number on the order plus 10. Gaps left by removals are never refilled; an
// order without items starts at 10. Line numbers referenced by the revision
// ledger count as taken, so once a quotation is out a removed line's number
// is never handed out again and ledger diffs stay unambiguous.
func (o Order) NextLineNumber() int {
	max := 0
	for _, it := range o.Items {
		if it.LineNumber > max {
			max = it.LineNumber
		}
	}
	for _, rev := range o.Revisions {
		for _, added := range rev.ItemsAdded {
			if added.LineNumber > max {
				max = added.LineNumber
			}
		}
		for _, removed := range rev.ItemsRemoved {
			if removed.LineNumber > max {
				max = removed.LineNumber
			}
		}
	}
	return max + lineNumberStep
}

// FindItem returns the index of the item with the given line number, or -1.
func (o Order) FindItem(lineNumber int) int {
	for i, it := range o.Items {
		if it.LineNumber == lineNumber {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the order. Operations in this package work on
// a clone so a failed operation can never leave the caller's value
// half-updated. Revision entries themselves are immutable and shared.
func (o Order) Clone() Order {
	out := o

	if o.Items != nil {
		out.Items = make([]LineItem, len(o.Items))
		copy(out.Items, o.Items)
		for i := range out.Items {
			if adj := o.Items[i].Adjustments; adj != nil {
				out.Items[i].Adjustments = make([]LineAdjustment, len(adj))
				copy(out.Items[i].Adjustments, adj)
			}
		}
	}
	if o.CartDiscounts != nil {
		out.CartDiscounts = make([]CartDiscount, len(o.CartDiscounts))
		copy(out.CartDiscounts, o.CartDiscounts)
	}
	if o.Revisions != nil {
		out.Revisions = make([]Revision, len(o.Revisions))
		copy(out.Revisions, o.Revisions)
	}
	return out
}
