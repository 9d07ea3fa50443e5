package domain

import (
	"fmt"
	"strings"
	"time"

	"tradeportal_backend/platform/apperr"
	"tradeportal_backend/platform/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// NewDraft creates an empty draft order for a customer. Totals start at zero
// and stay derived from then on.
func NewDraft(orderID, tenantID, customerID uuid.UUID, now time.Time) Order {
	o := Order{
		OrderID:    orderID,
		TenantID:   tenantID,
		CustomerID: customerID,
		Status:     StatusDraft,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	recompute(&o)
	return o
}

// Standalone financial edits are a draft-phase affair. Once a quotation is
// out, discounts and adjustments travel inside revise/counter deltas so every
// change lands in the revision ledger.
func ensureDraft(o Order, what string) error {
	if o.Status != StatusDraft {
		return apperr.Conflict(fmt.Sprintf("order status %q does not permit %s", o.Status, what))
	}
	return nil
}

// AddCartDiscount validates and appends a cart-level discount, then
// recomputes the order totals. A failed call returns the error and leaves
// the input order untouched.
func AddCartDiscount(order Order, actor Actor, in CartDiscountInput, now time.Time) (Order, error) {
	if err := validateCartDiscountInput(in); err != nil {
		return Order{}, err
	}
	if err := ensureDraft(order, "cart discounts"); err != nil {
		return Order{}, err
	}

	next := order.Clone()
	next.CartDiscounts = append(next.CartDiscounts, newCartDiscount(in, actor, now))
	next.UpdatedAt = now
	recompute(&next)
	return next, nil
}

// RemoveCartDiscount removes a cart discount by id and recomputes.
func RemoveCartDiscount(order Order, discountID uuid.UUID, now time.Time) (Order, error) {
	if err := ensureDraft(order, "cart discounts"); err != nil {
		return Order{}, err
	}

	idx := -1
	for i, d := range order.CartDiscounts {
		if d.DiscountID == discountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Order{}, apperr.NotFound(fmt.Sprintf("cart discount %s not found", discountID))
	}

	next := order.Clone()
	next.CartDiscounts = append(next.CartDiscounts[:idx], next.CartDiscounts[idx+1:]...)
	next.UpdatedAt = now
	recompute(&next)
	return next, nil
}

// ApplyLineAdjustment applies a price override or discount to one line,
// capturing the pre-adjustment value, and recomputes the order. The created
// adjustment is returned alongside the updated order.
func ApplyLineAdjustment(order Order, actor Actor, in LineAdjustmentInput, now time.Time) (Order, LineAdjustment, error) {
	if err := ensureDraft(order, "line adjustments"); err != nil {
		return Order{}, LineAdjustment{}, err
	}

	next := order.Clone()
	adj, err := applyLineAdjustmentInput(&next, in, actor, now)
	if err != nil {
		return Order{}, LineAdjustment{}, err
	}
	next.UpdatedAt = now
	recompute(&next)
	return next, adj, nil
}

// AddItem appends a new line to a draft. The engine assigns the line number.
func AddItem(order Order, in NewItemInput, now time.Time) (Order, LineItem, error) {
	if err := validateNewItemInput(in); err != nil {
		return Order{}, LineItem{}, err
	}
	if err := ensureDraft(order, "item changes"); err != nil {
		return Order{}, LineItem{}, err
	}

	next := order.Clone()
	appendItem(&next, in, next.NextLineNumber())
	next.UpdatedAt = now
	recompute(&next)
	return next, next.Items[len(next.Items)-1], nil
}

// RemoveItem drops a line from a draft. Remaining lines keep their numbers.
func RemoveItem(order Order, lineNumber int, now time.Time) (Order, error) {
	if err := ensureDraft(order, "item changes"); err != nil {
		return Order{}, err
	}
	idx := order.FindItem(lineNumber)
	if idx < 0 {
		return Order{}, apperr.NotFound(fmt.Sprintf("line %d not found on order", lineNumber))
	}

	next := order.Clone()
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	next.UpdatedAt = now
	recompute(&next)
	return next, nil
}

// ChangeItemQuantity updates the quantity of a draft line.
func ChangeItemQuantity(order Order, lineNumber, quantity int, now time.Time) (Order, error) {
	if quantity <= 0 {
		return Order{}, apperr.Validation("quantity must be greater than zero")
	}
	if err := ensureDraft(order, "item changes"); err != nil {
		return Order{}, err
	}
	idx := order.FindItem(lineNumber)
	if idx < 0 {
		return Order{}, apperr.NotFound(fmt.Sprintf("line %d not found on order", lineNumber))
	}

	next := order.Clone()
	next.Items[idx].Quantity = quantity
	next.UpdatedAt = now
	recompute(&next)
	return next, nil
}

// SetShippingCost updates the shipping amount on a draft. The value itself
// comes from the platform's shipping service; this core only folds it in.
func SetShippingCost(order Order, cost money.Money, now time.Time) (Order, error) {
	if cost.IsNegative() {
		return Order{}, apperr.Validation("shipping cost cannot be negative")
	}
	if err := ensureDraft(order, "shipping changes"); err != nil {
		return Order{}, err
	}

	next := order.Clone()
	next.ShippingCost = cost
	next.UpdatedAt = now
	recompute(&next)
	return next, nil
}

func validateCartDiscountInput(in CartDiscountInput) error {
	switch in.Type {
	case DiscountPercentage:
		if !in.Value.IsPositive() {
			return apperr.Validation("discount value must be greater than zero")
		}
		if in.Value.GreaterThan(oneHundred) {
			return apperr.Validation("percentage discount cannot exceed 100")
		}
	case DiscountFixed:
		if !in.Value.IsPositive() {
			return apperr.Validation("discount value must be greater than zero")
		}
	default:
		return apperr.Validation(fmt.Sprintf("unknown discount type %q", in.Type))
	}
	if !in.Reason.Valid() {
		return apperr.Validation(fmt.Sprintf("unknown discount reason %q", in.Reason))
	}
	return nil
}

func newCartDiscount(in CartDiscountInput, actor Actor, now time.Time) CartDiscount {
	return CartDiscount{
		DiscountID:  uuid.New(),
		Type:        in.Type,
		Value:       in.Value,
		Reason:      in.Reason,
		Description: in.Description,
		AppliedBy:   actor.ID,
		AppliedAt:   now,
	}
}

func validateNewItemInput(in NewItemInput) error {
	if strings.TrimSpace(in.EntityCode) == "" {
		return apperr.Validation("entity code is required")
	}
	if in.Quantity <= 0 {
		return apperr.Validation("quantity must be greater than zero")
	}
	if in.ListPrice.IsNegative() {
		return apperr.Validation("list price cannot be negative")
	}
	if in.UnitPrice.IsNegative() {
		return apperr.Validation("unit price cannot be negative")
	}
	if in.VATRate.IsNegative() || in.VATRate.GreaterThan(oneHundred) {
		return apperr.Validation("vat rate must be between 0 and 100")
	}
	return nil
}

// appendItem adds the line under the given line number. Derived amounts are
// filled in by the recompute that follows every mutation.
func appendItem(o *Order, in NewItemInput, lineNumber int) {
	o.Items = append(o.Items, LineItem{
		LineNumber: lineNumber,
		EntityCode: in.EntityCode,
		Quantity:   in.Quantity,
		ListPrice:  in.ListPrice,
		UnitPrice:  in.UnitPrice,
		VATRate:    in.VATRate,
		IsGiftLine: in.IsGiftLine,
	})
}

// applyLineAdjustmentInput mutates one line on an order clone. The captured
// original value depends on the adjustment type: the unit price for an
// override, the effective discount percentage against list price for the
// discount types. Unit prices stay at full precision; rounding only ever
// happens on derived amounts.
func applyLineAdjustmentInput(o *Order, in LineAdjustmentInput, actor Actor, now time.Time) (LineAdjustment, error) {
	if !in.Reason.Valid() {
		return LineAdjustment{}, apperr.Validation(fmt.Sprintf("unknown adjustment reason %q", in.Reason))
	}
	idx := o.FindItem(in.LineNumber)
	if idx < 0 {
		return LineAdjustment{}, apperr.NotFound(fmt.Sprintf("line %d not found on order", in.LineNumber))
	}
	line := &o.Items[idx]

	var original decimal.Decimal
	switch in.Type {
	case AdjustmentPriceOverride:
		if in.NewValue.IsNegative() {
			return LineAdjustment{}, apperr.Validation("price override cannot be negative")
		}
		original = line.UnitPrice
		line.UnitPrice = in.NewValue
	case AdjustmentDiscountPercentage:
		if !in.NewValue.IsPositive() || in.NewValue.GreaterThan(oneHundred) {
			return LineAdjustment{}, apperr.Validation("discount percentage must be between 0 and 100")
		}
		original = effectiveDiscountPercent(*line)
		line.UnitPrice = line.ListPrice.Mul(oneHundred.Sub(in.NewValue)).Shift(-2)
	case AdjustmentDiscountFixed:
		if !in.NewValue.IsPositive() {
			return LineAdjustment{}, apperr.Validation("discount amount must be greater than zero")
		}
		if in.NewValue.GreaterThan(line.ListPrice) {
			return LineAdjustment{}, apperr.Validation("fixed discount cannot exceed the list price")
		}
		original = effectiveDiscountPercent(*line)
		line.UnitPrice = line.ListPrice.Sub(in.NewValue)
	default:
		return LineAdjustment{}, apperr.Validation(fmt.Sprintf("unknown adjustment type %q", in.Type))
	}

	adj := LineAdjustment{
		AdjustmentID:  uuid.New(),
		LineNumber:    in.LineNumber,
		Type:          in.Type,
		OriginalValue: original,
		NewValue:      in.NewValue,
		Reason:        in.Reason,
		Description:   in.Description,
		AppliedBy:     actor.ID,
		AppliedAt:     now,
	}
	line.Adjustments = append(line.Adjustments, adj)
	return adj, nil
}

// effectiveDiscountPercent is the line's current discount depth against its
// list price, as a percentage. Zero when the list price is zero.
func effectiveDiscountPercent(line LineItem) decimal.Decimal {
	if line.ListPrice.IsZero() {
		return decimal.Zero
	}
	return line.ListPrice.Sub(line.UnitPrice).Div(line.ListPrice).Shift(2)
}
