package domain

import "github.com/shopspring/decimal"

// Action is the closed set of negotiation operations. Apply dispatches on the
// concrete type, so every (status, action, role) combination has exactly one
// defined outcome.
type Action interface {
	isAction()
	// Name is the action identifier used in transition errors and logs.
	Name() string
}

// Send moves a draft to quotation_sent. Sales only.
type Send struct {
	Message string
}

// Accept closes the negotiation in the customer's favour. Customer only.
type Accept struct{}

// Reject closes the negotiation with an optional reason. Customer only.
type Reject struct {
	Reason string
}

// Revise applies a sales-proposed delta while keeping the quotation open.
type Revise struct {
	Delta RevisionDelta
}

// Counter applies a customer-proposed delta while keeping the quotation open.
type Counter struct {
	Delta RevisionDelta
}

func (Send) isAction()    {}
func (Accept) isAction()  {}
func (Reject) isAction()  {}
func (Revise) isAction()  {}
func (Counter) isAction() {}

func (Send) Name() string    { return "send" }
func (Accept) Name() string  { return "accept" }
func (Reject) Name() string  { return "reject" }
func (Revise) Name() string  { return "revise" }
func (Counter) Name() string { return "counter" }

// RevisionDelta is the fully-typed change set carried by a revise or counter
// action. Empty sub-lists mean "no change of that kind"; a delta with every
// list empty and no notes is still a legal (if pointless) negotiation round.
type RevisionDelta struct {
	CartDiscountsAdded   []CartDiscountInput
	LineAdjustmentsAdded []LineAdjustmentInput
	ItemsAdded           []NewItemInput
	ItemsRemoved         []int
	ItemsQtyChanged      []QtyChangeInput
	Notes                string
	InternalNotes        string
}

// Empty reports whether the delta changes nothing (notes excluded).
func (d RevisionDelta) Empty() bool {
	return len(d.CartDiscountsAdded) == 0 &&
		len(d.LineAdjustmentsAdded) == 0 &&
		len(d.ItemsAdded) == 0 &&
		len(d.ItemsRemoved) == 0 &&
		len(d.ItemsQtyChanged) == 0
}

// CartDiscountInput describes a cart discount to add.
type CartDiscountInput struct {
	Type        DiscountType
	Value       decimal.Decimal
	Reason      AdjustmentReason
	Description string
}

// LineAdjustmentInput describes a line adjustment to apply.
type LineAdjustmentInput struct {
	LineNumber  int
	Type        AdjustmentType
	NewValue    decimal.Decimal
	Reason      AdjustmentReason
	Description string
}

// NewItemInput describes an item to add. The line number is assigned by the
// engine, never by the caller.
type NewItemInput struct {
	EntityCode string
	Quantity   int
	ListPrice  decimal.Decimal
	UnitPrice  decimal.Decimal
	VATRate    decimal.Decimal
	IsGiftLine bool
}

// QtyChangeInput describes a quantity edit on an existing line. Quantities
// must stay positive; removing a line is an explicit ItemsRemoved entry.
type QtyChangeInput struct {
	LineNumber  int
	NewQuantity int
}
