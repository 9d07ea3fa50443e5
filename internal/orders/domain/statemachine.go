package domain

import (
	"fmt"
	"time"

	"tradeportal_backend/platform/apperr"
)

// Apply executes one negotiation action against an order value and returns
// the next state. The input order is never mutated; when an error is
// returned, nothing was applied. Dispatch is exhaustive over the Action sum
// type, so every (status, action, role) combination has a defined outcome:
//
//	draft          --send(sales)------> quotation_sent
//	quotation_sent --accept(customer)-> accepted
//	quotation_sent --reject(customer)-> rejected
//	quotation_sent --revise(sales)----> quotation_sent
//	quotation_sent --counter(customer)> quotation_sent
//
// Everything else fails with an invalid-transition conflict naming the
// current status and requested action; a legal pair attempted by the wrong
// role fails as unauthorized.
func Apply(order Order, action Action, actor Actor, now time.Time) (Order, error) {
	if !actor.Role.Valid() {
		return Order{}, apperr.Forbidden(fmt.Sprintf("unknown actor role %q", actor.Role))
	}

	switch a := action.(type) {
	case Send:
		return applySend(order, a, actor, now)
	case Accept:
		return applyAccept(order, a, actor, now)
	case Reject:
		return applyReject(order, a, actor, now)
	case Revise:
		return applyRound(order, a, a.Delta, RoleSales, actor, now)
	case Counter:
		return applyRound(order, a, a.Delta, RoleCustomer, actor, now)
	default:
		return Order{}, apperr.Internal(fmt.Sprintf("unhandled action type %T", action))
	}
}

func invalidTransition(o Order, action Action) error {
	return apperr.Conflict(fmt.Sprintf("action %q is not allowed while the order is %q", action.Name(), o.Status))
}

func wrongRole(action Action, required Role) error {
	return apperr.Forbidden(fmt.Sprintf("only %s actors may %s a quotation", required, action.Name()))
}

func applySend(order Order, a Send, actor Actor, now time.Time) (Order, error) {
	if order.Status != StatusDraft {
		return Order{}, invalidTransition(order, a)
	}
	if actor.Role != RoleSales {
		return Order{}, wrongRole(a, RoleSales)
	}
	if len(order.Items) == 0 {
		return Order{}, apperr.Validation("cannot send a quotation without line items")
	}

	next := order.Clone()
	if len(next.Revisions) == 0 {
		next.Revisions = append(next.Revisions, BuildRevision(order, next, actor, nil, nil, a.Message, "", now))
	}
	next.Status = StatusQuotationSent
	next.UpdatedAt = now
	recompute(&next)
	return next, nil
}

func applyAccept(order Order, a Accept, actor Actor, now time.Time) (Order, error) {
	if order.Status != StatusQuotationSent {
		return Order{}, invalidTransition(order, a)
	}
	if actor.Role != RoleCustomer {
		return Order{}, wrongRole(a, RoleCustomer)
	}

	next := order.Clone()
	next.Status = StatusAccepted
	next.UpdatedAt = now
	return next, nil
}

func applyReject(order Order, a Reject, actor Actor, now time.Time) (Order, error) {
	if order.Status != StatusQuotationSent {
		return Order{}, invalidTransition(order, a)
	}
	if actor.Role != RoleCustomer {
		return Order{}, wrongRole(a, RoleCustomer)
	}

	next := order.Clone()
	next.Status = StatusRejected
	next.RejectionReason = a.Reason
	next.UpdatedAt = now
	return next, nil
}

// applyRound runs one revise or counter: the delta is applied to a clone,
// totals are recomputed, and exactly one Revision is appended. Status stays
// quotation_sent, a fresh round awaiting the other side's response.
func applyRound(order Order, action Action, delta RevisionDelta, required Role, actor Actor, now time.Time) (Order, error) {
	if order.Status != StatusQuotationSent {
		return Order{}, invalidTransition(order, action)
	}
	if actor.Role != required {
		return Order{}, wrongRole(action, required)
	}

	next := order.Clone()
	discounts, adjustments, err := applyDelta(&next, delta, actor, now)
	if err != nil {
		return Order{}, err
	}

	rev := BuildRevision(order, next, actor, discounts, adjustments, delta.Notes, delta.InternalNotes, now)
	next.Revisions = append(next.Revisions, rev)
	next.UpdatedAt = now
	return next, nil
}

// applyDelta mutates an order clone with one round's changes. Application
// order is fixed (removals, additions, quantity changes, line adjustments,
// cart discounts) so an adjustment or quantity change may target a line
// added earlier in the same delta. Any failure aborts the round; the clone
// is discarded by the caller, so the stored order is never half-updated.
func applyDelta(o *Order, delta RevisionDelta, actor Actor, now time.Time) ([]CartDiscount, []LineAdjustment, error) {
	// Additions are numbered from the pre-removal high-water mark; a number
	// freed by a removal in the same round is never reissued.
	nextLine := o.NextLineNumber()

	for _, lineNumber := range delta.ItemsRemoved {
		idx := o.FindItem(lineNumber)
		if idx < 0 {
			return nil, nil, apperr.Validation(fmt.Sprintf("delta removes unknown line %d", lineNumber))
		}
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	}

	for _, in := range delta.ItemsAdded {
		if err := validateNewItemInput(in); err != nil {
			return nil, nil, err
		}
		appendItem(o, in, nextLine)
		nextLine += lineNumberStep
	}

	for _, qc := range delta.ItemsQtyChanged {
		if qc.NewQuantity <= 0 {
			return nil, nil, apperr.Validation("quantity must be greater than zero")
		}
		idx := o.FindItem(qc.LineNumber)
		if idx < 0 {
			return nil, nil, apperr.Validation(fmt.Sprintf("delta changes quantity of unknown line %d", qc.LineNumber))
		}
		o.Items[idx].Quantity = qc.NewQuantity
	}

	var adjustments []LineAdjustment
	for _, in := range delta.LineAdjustmentsAdded {
		adj, err := applyLineAdjustmentInput(o, in, actor, now)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, nil, apperr.Validation(fmt.Sprintf("delta adjusts unknown line %d", in.LineNumber))
			}
			return nil, nil, err
		}
		adjustments = append(adjustments, adj)
	}

	var discounts []CartDiscount
	for _, in := range delta.CartDiscountsAdded {
		if err := validateCartDiscountInput(in); err != nil {
			return nil, nil, err
		}
		d := newCartDiscount(in, actor, now)
		o.CartDiscounts = append(o.CartDiscounts, d)
		discounts = append(discounts, d)
	}

	recompute(o)
	return discounts, adjustments, nil
}
