package domain

import (
	"testing"

	"tradeportal_backend/platform/apperr"
	"tradeportal_backend/platform/money"

	"github.com/google/uuid"
)

func TestAddCartDiscount_RecomputesTotals(t *testing.T) {
	actor := salesActor()

	got, err := AddCartDiscount(newDraft(t), actor, CartDiscountInput{
		Type: DiscountPercentage, Value: dec("10"), Reason: ReasonLoyaltyDiscount, Description: "Vaste klant",
	}, testNow)
	if err != nil {
		t.Fatalf("add cart discount: %v", err)
	}

	if len(got.CartDiscounts) != 1 {
		t.Fatalf("expected one cart discount, got %d", len(got.CartDiscounts))
	}
	d := got.CartDiscounts[0]
	if d.DiscountID == uuid.Nil {
		t.Fatalf("expected a fresh discount id")
	}
	if d.AppliedBy != actor.ID || !d.AppliedAt.Equal(testNow) {
		t.Fatalf("expected discount stamped with actor and time, got %+v", d)
	}
	if got.SubtotalNet.String() != "945.00" {
		t.Fatalf("expected subtotal net 945.00, got %s", got.SubtotalNet)
	}
	if got.TotalDiscount.String() != "355.00" {
		t.Fatalf("expected total discount 355.00, got %s", got.TotalDiscount)
	}
}

func TestAddCartDiscount_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		in   CartDiscountInput
	}{
		{"unknown type", CartDiscountInput{Type: DiscountType("coupon"), Value: dec("5"), Reason: ReasonPromotion}},
		{"zero value", CartDiscountInput{Type: DiscountFixed, Value: dec("0"), Reason: ReasonPromotion}},
		{"negative value", CartDiscountInput{Type: DiscountPercentage, Value: dec("-5"), Reason: ReasonPromotion}},
		{"percentage above 100", CartDiscountInput{Type: DiscountPercentage, Value: dec("101"), Reason: ReasonPromotion}},
		{"unknown reason", CartDiscountInput{Type: DiscountFixed, Value: dec("5"), Reason: AdjustmentReason("because")}},
	}

	draft := newDraft(t)
	for _, tc := range cases {
		if _, err := AddCartDiscount(draft, salesActor(), tc.in, testNow); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestAddCartDiscount_DraftOnly(t *testing.T) {
	in := CartDiscountInput{Type: DiscountFixed, Value: dec("5"), Reason: ReasonGoodwill}

	_, err := AddCartDiscount(sentOrder(t), salesActor(), in, testNow)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict adding a discount outside draft, got %v", err)
	}
}

func TestRemoveCartDiscount_RestoresTotals(t *testing.T) {
	o, err := AddCartDiscount(newDraft(t), salesActor(), CartDiscountInput{
		Type: DiscountFixed, Value: dec("100"), Reason: ReasonGoodwill,
	}, testNow)
	if err != nil {
		t.Fatalf("add cart discount: %v", err)
	}

	got, err := RemoveCartDiscount(o, o.CartDiscounts[0].DiscountID, testNow)
	if err != nil {
		t.Fatalf("remove cart discount: %v", err)
	}
	if len(got.CartDiscounts) != 0 {
		t.Fatalf("expected no cart discounts left, got %d", len(got.CartDiscounts))
	}
	if got.SubtotalNet.String() != "1050.00" {
		t.Fatalf("expected subtotal net restored to 1050.00, got %s", got.SubtotalNet)
	}
}

func TestRemoveCartDiscount_UnknownID(t *testing.T) {
	_, err := RemoveCartDiscount(newDraft(t), uuid.New(), testNow)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown discount id, got %v", err)
	}
}

func TestApplyLineAdjustment_PriceOverrideCapturesOriginal(t *testing.T) {
	got, adj, err := ApplyLineAdjustment(newDraft(t), salesActor(), LineAdjustmentInput{
		LineNumber: 10, Type: AdjustmentPriceOverride, NewValue: dec("70"), Reason: ReasonPriceMatch,
	}, testNow)
	if err != nil {
		t.Fatalf("apply adjustment: %v", err)
	}

	if !adj.OriginalValue.Equal(dec("80")) {
		t.Fatalf("expected original unit price 80 captured, got %s", adj.OriginalValue)
	}
	if !got.Items[0].UnitPrice.Equal(dec("70")) {
		t.Fatalf("expected unit price 70, got %s", got.Items[0].UnitPrice)
	}
	if got.Items[0].LineNet.String() != "700.00" {
		t.Fatalf("expected line net 700.00, got %s", got.Items[0].LineNet)
	}
	if len(got.Items[0].Adjustments) != 1 || got.Items[0].Adjustments[0].AdjustmentID != adj.AdjustmentID {
		t.Fatalf("expected adjustment recorded on the line")
	}
}

func TestApplyLineAdjustment_OverrideAboveListAllowed(t *testing.T) {
	got, _, err := ApplyLineAdjustment(newDraft(t), salesActor(), LineAdjustmentInput{
		LineNumber: 10, Type: AdjustmentPriceOverride, NewValue: dec("120"), Reason: ReasonNegotiatedRate,
	}, testNow)
	if err != nil {
		t.Fatalf("expected override above list price to pass, got %v", err)
	}

	// gross stays 1300, net rises to 1450: the discount goes negative.
	if got.TotalDiscount.String() != "-150.00" {
		t.Fatalf("expected total discount -150.00, got %s", got.TotalDiscount)
	}
}

func TestApplyLineAdjustment_DiscountPercentageKeepsExactUnitPrice(t *testing.T) {
	got, adj, err := ApplyLineAdjustment(newDraft(t), salesActor(), LineAdjustmentInput{
		LineNumber: 10, Type: AdjustmentDiscountPercentage, NewValue: dec("17.5"), Reason: ReasonVolumeDiscount,
	}, testNow)
	if err != nil {
		t.Fatalf("apply adjustment: %v", err)
	}

	// 80 on a list of 100 was a 20% depth.
	if !adj.OriginalValue.Equal(dec("20")) {
		t.Fatalf("expected original discount depth 20, got %s", adj.OriginalValue)
	}
	if !got.Items[0].UnitPrice.Equal(dec("82.5")) {
		t.Fatalf("expected exact unit price 82.5, got %s", got.Items[0].UnitPrice)
	}
	if got.Items[0].LineNet.String() != "825.00" {
		t.Fatalf("expected line net 825.00, got %s", got.Items[0].LineNet)
	}
}

func TestApplyLineAdjustment_DiscountFixed(t *testing.T) {
	got, adj, err := ApplyLineAdjustment(newDraft(t), salesActor(), LineAdjustmentInput{
		LineNumber: 20, Type: AdjustmentDiscountFixed, NewValue: dec("12.5"), Reason: ReasonShippingDamage,
	}, testNow)
	if err != nil {
		t.Fatalf("apply adjustment: %v", err)
	}

	if !got.Items[1].UnitPrice.Equal(dec("287.5")) {
		t.Fatalf("expected unit price 287.5, got %s", got.Items[1].UnitPrice)
	}
	// 250 on a list of 300: a 16.67% depth before this adjustment.
	if !adj.OriginalValue.Round(2).Equal(dec("16.67")) {
		t.Fatalf("expected original discount depth 16.67, got %s", adj.OriginalValue.Round(2))
	}
}

func TestApplyLineAdjustment_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		in   LineAdjustmentInput
		kind apperr.Kind
	}{
		{"negative override", LineAdjustmentInput{LineNumber: 10, Type: AdjustmentPriceOverride, NewValue: dec("-1"), Reason: ReasonPriceMatch}, apperr.KindValidation},
		{"zero percentage", LineAdjustmentInput{LineNumber: 10, Type: AdjustmentDiscountPercentage, NewValue: dec("0"), Reason: ReasonPromotion}, apperr.KindValidation},
		{"percentage above 100", LineAdjustmentInput{LineNumber: 10, Type: AdjustmentDiscountPercentage, NewValue: dec("100.01"), Reason: ReasonPromotion}, apperr.KindValidation},
		{"fixed above list price", LineAdjustmentInput{LineNumber: 20, Type: AdjustmentDiscountFixed, NewValue: dec("300.01"), Reason: ReasonGoodwill}, apperr.KindValidation},
		{"unknown type", LineAdjustmentInput{LineNumber: 10, Type: AdjustmentType("markup"), NewValue: dec("5"), Reason: ReasonPromotion}, apperr.KindValidation},
		{"unknown reason", LineAdjustmentInput{LineNumber: 10, Type: AdjustmentPriceOverride, NewValue: dec("70"), Reason: AdjustmentReason("felt like it")}, apperr.KindValidation},
		{"unknown line", LineAdjustmentInput{LineNumber: 999, Type: AdjustmentPriceOverride, NewValue: dec("70"), Reason: ReasonPriceMatch}, apperr.KindNotFound},
	}

	draft := newDraft(t)
	for _, tc := range cases {
		if _, _, err := ApplyLineAdjustment(draft, salesActor(), tc.in, testNow); !apperr.Is(err, tc.kind) {
			t.Fatalf("%s: expected kind %v, got %v", tc.name, tc.kind, err)
		}
	}
}

func TestApplyLineAdjustment_DraftOnly(t *testing.T) {
	_, _, err := ApplyLineAdjustment(sentOrder(t), salesActor(), LineAdjustmentInput{
		LineNumber: 10, Type: AdjustmentPriceOverride, NewValue: dec("70"), Reason: ReasonPriceMatch,
	}, testNow)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict adjusting outside draft, got %v", err)
	}
}

func TestAddItem_AssignsSteppedLineNumbers(t *testing.T) {
	o := newDraft(t)
	if o.Items[0].LineNumber != 10 || o.Items[1].LineNumber != 20 {
		t.Fatalf("expected lines 10 and 20, got %d and %d", o.Items[0].LineNumber, o.Items[1].LineNumber)
	}

	o, added, err := AddItem(o, NewItemInput{
		EntityCode: "VLV-2205", Quantity: 1, ListPrice: dec("40"), UnitPrice: dec("40"), VATRate: dec("22"),
	}, testNow)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if added.LineNumber != 30 {
		t.Fatalf("expected line 30, got %d", added.LineNumber)
	}
	if added.LineTotal.String() != "48.80" {
		t.Fatalf("expected line total 48.80, got %s", added.LineTotal)
	}
}

func TestAddItem_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		in   NewItemInput
	}{
		{"missing entity code", NewItemInput{EntityCode: "  ", Quantity: 1, ListPrice: dec("10"), UnitPrice: dec("10"), VATRate: dec("22")}},
		{"zero quantity", NewItemInput{EntityCode: "X", Quantity: 0, ListPrice: dec("10"), UnitPrice: dec("10"), VATRate: dec("22")}},
		{"negative list price", NewItemInput{EntityCode: "X", Quantity: 1, ListPrice: dec("-10"), UnitPrice: dec("10"), VATRate: dec("22")}},
		{"negative unit price", NewItemInput{EntityCode: "X", Quantity: 1, ListPrice: dec("10"), UnitPrice: dec("-10"), VATRate: dec("22")}},
		{"vat above 100", NewItemInput{EntityCode: "X", Quantity: 1, ListPrice: dec("10"), UnitPrice: dec("10"), VATRate: dec("101")}},
	}

	draft := newDraft(t)
	for _, tc := range cases {
		if _, _, err := AddItem(draft, tc.in, testNow); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestAddItem_UnitAboveListAllowed(t *testing.T) {
	_, added, err := AddItem(newDraft(t), NewItemInput{
		EntityCode: "EXP-0001", Quantity: 1, ListPrice: dec("100"), UnitPrice: dec("110"), VATRate: dec("22"),
	}, testNow)
	if err != nil {
		t.Fatalf("expected unit price above list to pass, got %v", err)
	}
	if added.LineGross.String() != "100.00" || added.LineNet.String() != "110.00" {
		t.Fatalf("expected gross 100.00 and net 110.00, got %s and %s", added.LineGross, added.LineNet)
	}
}

func TestRemoveItem_Recomputes(t *testing.T) {
	got, err := RemoveItem(newDraft(t), 20, testNow)
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected one line left, got %d", len(got.Items))
	}
	if got.OrderTotal.String() != "976.00" {
		t.Fatalf("expected order total 976.00, got %s", got.OrderTotal)
	}

	if _, err := RemoveItem(got, 999, testNow); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found removing unknown line, got %v", err)
	}
}

func TestChangeItemQuantity_Recomputes(t *testing.T) {
	got, err := ChangeItemQuantity(newDraft(t), 10, 5, testNow)
	if err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if got.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", got.Items[0].Quantity)
	}
	if got.Items[0].LineNet.String() != "400.00" {
		t.Fatalf("expected line net 400.00, got %s", got.Items[0].LineNet)
	}

	if _, err := ChangeItemQuantity(got, 10, 0, testNow); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	if _, err := ChangeItemQuantity(got, 999, 5, testNow); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown line, got %v", err)
	}
}

func TestSetShippingCost_FoldsIntoTotal(t *testing.T) {
	o, err := RemoveItem(newDraft(t), 20, testNow)
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}

	got, err := SetShippingCost(o, money.FromFloat(15), testNow)
	if err != nil {
		t.Fatalf("set shipping: %v", err)
	}
	if got.OrderTotal.String() != "991.00" {
		t.Fatalf("expected order total 991.00, got %s", got.OrderTotal)
	}

	if _, err := SetShippingCost(got, money.FromFloat(-1), testNow); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for negative shipping, got %v", err)
	}
}

func TestDraftMutatorsLeaveInputUntouched(t *testing.T) {
	o := newDraft(t)
	itemsBefore := len(o.Items)
	netBefore := o.SubtotalNet.String()

	if _, _, err := AddItem(o, NewItemInput{
		EntityCode: "VLV-2205", Quantity: 2, ListPrice: dec("40"), UnitPrice: dec("35"), VATRate: dec("22"),
	}, testNow); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := AddCartDiscount(o, salesActor(), CartDiscountInput{
		Type: DiscountPercentage, Value: dec("10"), Reason: ReasonPromotion,
	}, testNow); err != nil {
		t.Fatalf("add cart discount: %v", err)
	}

	if len(o.Items) != itemsBefore || len(o.CartDiscounts) != 0 {
		t.Fatalf("expected input order unchanged")
	}
	if o.SubtotalNet.String() != netBefore {
		t.Fatalf("expected input totals unchanged, got %s", o.SubtotalNet)
	}
}
