package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBuildRevision_DiffsItemSets(t *testing.T) {
	actor := salesActor()
	before := newDraft(t)

	after := before.Clone()
	after.Items = append(after.Items[:1], LineItem{
		LineNumber: 30, EntityCode: "GSK-1180", Quantity: 4,
		ListPrice: dec("12.50"), UnitPrice: dec("11"), VATRate: dec("22"), IsGiftLine: true,
	})
	after.Items[0].Quantity = 7

	rev := BuildRevision(before, after, actor, nil, nil, "ronde 2", "intern", testNow)

	if rev.RevisionID == uuid.Nil {
		t.Fatalf("expected a fresh revision id")
	}
	if rev.CreatedBy != actor.ID || rev.CreatedByName != actor.Name || rev.ActorRole != actor.Role {
		t.Fatalf("expected revision attributed to actor, got %+v", rev)
	}
	if !rev.CreatedAt.Equal(testNow) {
		t.Fatalf("expected created_at %s, got %s", testNow, rev.CreatedAt)
	}

	if len(rev.ItemsAdded) != 1 {
		t.Fatalf("expected one added item, got %d", len(rev.ItemsAdded))
	}
	added := rev.ItemsAdded[0]
	if added.LineNumber != 30 || added.EntityCode != "GSK-1180" || added.Quantity != 4 || !added.IsGiftLine {
		t.Fatalf("expected full snapshot of added line, got %+v", added)
	}
	if !added.UnitPrice.Equal(dec("11")) || !added.ListPrice.Equal(dec("12.50")) {
		t.Fatalf("expected added line to carry pricing, got %+v", added)
	}

	if len(rev.ItemsRemoved) != 1 || rev.ItemsRemoved[0].LineNumber != 20 || rev.ItemsRemoved[0].EntityCode != "FLT-0907" {
		t.Fatalf("expected removal of line 20, got %+v", rev.ItemsRemoved)
	}

	if len(rev.ItemsQtyChanged) != 1 {
		t.Fatalf("expected one qty change, got %d", len(rev.ItemsQtyChanged))
	}
	if qc := rev.ItemsQtyChanged[0]; qc.LineNumber != 10 || qc.OldQty != 10 || qc.NewQty != 7 {
		t.Fatalf("expected qty change 10: 10 -> 7, got %+v", qc)
	}

	if rev.Notes != "ronde 2" || rev.InternalNotes != "intern" {
		t.Fatalf("expected notes kept, got %q / %q", rev.Notes, rev.InternalNotes)
	}
}

func TestBuildRevision_NoChangesYieldsEmptyDiff(t *testing.T) {
	o := newDraft(t)

	rev := BuildRevision(o, o.Clone(), salesActor(), nil, nil, "", "", testNow)

	if len(rev.ItemsAdded) != 0 || len(rev.ItemsRemoved) != 0 || len(rev.ItemsQtyChanged) != 0 {
		t.Fatalf("expected empty diff for identical snapshots, got %+v", rev)
	}
}

func TestBuildRevision_StampsUnstampedEntries(t *testing.T) {
	actor := customerActor()
	o := newDraft(t)
	prestamped := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)
	other := uuid.New()

	discounts := []CartDiscount{
		{DiscountID: uuid.New(), Type: DiscountFixed, Value: dec("10"), Reason: ReasonGoodwill},
		{DiscountID: uuid.New(), Type: DiscountPercentage, Value: dec("5"), Reason: ReasonPromotion, AppliedBy: other, AppliedAt: prestamped},
	}
	adjustments := []LineAdjustment{
		{AdjustmentID: uuid.New(), LineNumber: 10, Type: AdjustmentPriceOverride, NewValue: dec("70"), Reason: ReasonPriceMatch},
	}

	rev := BuildRevision(o, o.Clone(), actor, discounts, adjustments, "", "", testNow)

	if rev.CartDiscountsAdded[0].AppliedBy != actor.ID || !rev.CartDiscountsAdded[0].AppliedAt.Equal(testNow) {
		t.Fatalf("expected unstamped discount stamped with actor and now, got %+v", rev.CartDiscountsAdded[0])
	}
	if rev.CartDiscountsAdded[1].AppliedBy != other || !rev.CartDiscountsAdded[1].AppliedAt.Equal(prestamped) {
		t.Fatalf("expected prestamped discount left alone, got %+v", rev.CartDiscountsAdded[1])
	}
	if rev.LineAdjustmentsAdded[0].AppliedBy != actor.ID || !rev.LineAdjustmentsAdded[0].AppliedAt.Equal(testNow) {
		t.Fatalf("expected unstamped adjustment stamped, got %+v", rev.LineAdjustmentsAdded[0])
	}
}

// replayLedger applies every revision's recorded changes over a copy of the
// draft item set, the way an auditor would rebuild the negotiation.
func replayLedger(items []LineItem, revisions []Revision) ([]LineItem, []uuid.UUID) {
	replayed := make([]LineItem, len(items))
	copy(replayed, items)
	var discountIDs []uuid.UUID

	for _, rev := range revisions {
		for _, rm := range rev.ItemsRemoved {
			for i := range replayed {
				if replayed[i].LineNumber == rm.LineNumber {
					replayed = append(replayed[:i], replayed[i+1:]...)
					break
				}
			}
		}
		for _, add := range rev.ItemsAdded {
			replayed = append(replayed, LineItem{
				LineNumber: add.LineNumber, EntityCode: add.EntityCode, Quantity: add.Quantity,
				ListPrice: add.ListPrice, UnitPrice: add.UnitPrice, VATRate: add.VATRate,
				IsGiftLine: add.IsGiftLine,
			})
		}
		for _, qc := range rev.ItemsQtyChanged {
			for i := range replayed {
				if replayed[i].LineNumber == qc.LineNumber {
					replayed[i].Quantity = qc.NewQty
				}
			}
		}
		for _, adj := range rev.LineAdjustmentsAdded {
			for i := range replayed {
				if replayed[i].LineNumber != adj.LineNumber {
					continue
				}
				switch adj.Type {
				case AdjustmentPriceOverride:
					replayed[i].UnitPrice = adj.NewValue
				case AdjustmentDiscountPercentage:
					replayed[i].UnitPrice = replayed[i].ListPrice.Mul(dec("100").Sub(adj.NewValue)).Shift(-2)
				case AdjustmentDiscountFixed:
					replayed[i].UnitPrice = replayed[i].ListPrice.Sub(adj.NewValue)
				}
			}
		}
		for _, d := range rev.CartDiscountsAdded {
			discountIDs = append(discountIDs, d.DiscountID)
		}
	}
	return replayed, discountIDs
}

func TestReplay_LedgerReconstructsFinalState(t *testing.T) {
	draft := newDraft(t)
	draftItems := make([]LineItem, len(draft.Items))
	copy(draftItems, draft.Items)

	o, err := Apply(draft, Send{Message: "Eerste aanbieding."}, salesActor(), testNow)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	o, err = Apply(o, Revise{Delta: RevisionDelta{
		ItemsRemoved: []int{20},
		ItemsAdded: []NewItemInput{{
			EntityCode: "GSK-1180", Quantity: 4,
			ListPrice: dec("12.50"), UnitPrice: dec("11"), VATRate: dec("22"),
		}},
		ItemsQtyChanged: []QtyChangeInput{{LineNumber: 10, NewQuantity: 12}},
	}}, salesActor(), testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("revise: %v", err)
	}

	o, err = Apply(o, Counter{Delta: RevisionDelta{
		LineAdjustmentsAdded: []LineAdjustmentInput{{
			LineNumber: 10, Type: AdjustmentDiscountPercentage, NewValue: dec("30"), Reason: ReasonNegotiatedRate,
		}},
		CartDiscountsAdded: []CartDiscountInput{{
			Type: DiscountFixed, Value: dec("25"), Reason: ReasonGoodwill,
		}},
	}}, customerActor(), testNow.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("counter: %v", err)
	}

	replayed, discountIDs := replayLedger(draftItems, o.Revisions)

	if len(replayed) != len(o.Items) {
		t.Fatalf("expected %d replayed lines, got %d", len(o.Items), len(replayed))
	}
	for i, want := range o.Items {
		got := replayed[i]
		if got.LineNumber != want.LineNumber || got.EntityCode != want.EntityCode || got.Quantity != want.Quantity {
			t.Fatalf("line %d: expected %d %s x%d, got %d %s x%d",
				i, want.LineNumber, want.EntityCode, want.Quantity, got.LineNumber, got.EntityCode, got.Quantity)
		}
		if !got.UnitPrice.Equal(want.UnitPrice) {
			t.Fatalf("line %d: expected unit price %s, got %s", want.LineNumber, want.UnitPrice, got.UnitPrice)
		}
	}

	if len(discountIDs) != len(o.CartDiscounts) {
		t.Fatalf("expected %d discounts from ledger, got %d", len(o.CartDiscounts), len(discountIDs))
	}
	for i, want := range o.CartDiscounts {
		if discountIDs[i] != want.DiscountID {
			t.Fatalf("discount %d: expected id %s, got %s", i, want.DiscountID, discountIDs[i])
		}
	}
}
