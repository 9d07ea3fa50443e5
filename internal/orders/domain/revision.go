package domain

import (
	"time"

	"github.com/google/uuid"
)

// BuildRevision diffs two order snapshots and assembles the immutable record
// of one negotiation round. Item changes are derived by set-difference over
// line numbers; quantity changes by comparing lines present in both
// snapshots. Discount and adjustment entries come from the applied delta and
// are stamped with the acting party if the caller left them unstamped.
//
// The returned Revision is complete enough to replay: applying every
// revision's removals, additions, quantity changes, adjustments and
// discounts in ledger order over the original draft reproduces the final
// item and discount set exactly.
func BuildRevision(before, after Order, actor Actor, discounts []CartDiscount, adjustments []LineAdjustment, notes, internalNotes string, now time.Time) Revision {
	beforeLines := make(map[int]LineItem, len(before.Items))
	for _, it := range before.Items {
		beforeLines[it.LineNumber] = it
	}
	afterLines := make(map[int]LineItem, len(after.Items))
	for _, it := range after.Items {
		afterLines[it.LineNumber] = it
	}

	var added []RevisionItemAdded
	for _, it := range after.Items {
		if _, ok := beforeLines[it.LineNumber]; ok {
			continue
		}
		added = append(added, RevisionItemAdded{
			LineNumber: it.LineNumber,
			EntityCode: it.EntityCode,
			Quantity:   it.Quantity,
			ListPrice:  it.ListPrice,
			UnitPrice:  it.UnitPrice,
			VATRate:    it.VATRate,
			IsGiftLine: it.IsGiftLine,
		})
	}

	var removed []RevisionItemRemoved
	var qtyChanged []QtyChange
	for _, it := range before.Items {
		afterIt, ok := afterLines[it.LineNumber]
		if !ok {
			removed = append(removed, RevisionItemRemoved{LineNumber: it.LineNumber, EntityCode: it.EntityCode})
			continue
		}
		if afterIt.Quantity != it.Quantity {
			qtyChanged = append(qtyChanged, QtyChange{LineNumber: it.LineNumber, OldQty: it.Quantity, NewQty: afterIt.Quantity})
		}
	}

	for i := range discounts {
		if discounts[i].AppliedBy == uuid.Nil {
			discounts[i].AppliedBy = actor.ID
		}
		if discounts[i].AppliedAt.IsZero() {
			discounts[i].AppliedAt = now
		}
	}
	for i := range adjustments {
		if adjustments[i].AppliedBy == uuid.Nil {
			adjustments[i].AppliedBy = actor.ID
		}
		if adjustments[i].AppliedAt.IsZero() {
			adjustments[i].AppliedAt = now
		}
	}

	return Revision{
		RevisionID:           uuid.New(),
		CreatedBy:            actor.ID,
		CreatedByName:        actor.Name,
		ActorRole:            actor.Role,
		CreatedAt:            now,
		CartDiscountsAdded:   discounts,
		LineAdjustmentsAdded: adjustments,
		ItemsAdded:           added,
		ItemsRemoved:         removed,
		ItemsQtyChanged:      qtyChanged,
		Notes:                notes,
		InternalNotes:        internalNotes,
	}
}
