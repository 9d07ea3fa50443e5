package domain

import (
	"testing"

	"tradeportal_backend/platform/money"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLine_StandardDiscounting(t *testing.T) {
	got := ComputeLine(10, dec("100"), dec("80"), dec("22"))

	if got.Gross.String() != "1000.00" {
		t.Fatalf("expected gross 1000.00, got %s", got.Gross)
	}
	if got.Net.String() != "800.00" {
		t.Fatalf("expected net 800.00, got %s", got.Net)
	}
	if got.VAT.String() != "176.00" {
		t.Fatalf("expected vat 176.00, got %s", got.VAT)
	}
	if got.Total.String() != "976.00" {
		t.Fatalf("expected total 976.00, got %s", got.Total)
	}
}

func TestComputeLine_RoundsEachFieldIndependently(t *testing.T) {
	got := ComputeLine(3, dec("0.21106"), dec("0.1056"), dec("22"))

	if got.Gross.String() != "0.63" {
		t.Fatalf("expected gross 0.63, got %s", got.Gross)
	}
	if got.Net.String() != "0.32" {
		t.Fatalf("expected net 0.32, got %s", got.Net)
	}
	if got.VAT.String() != "0.07" {
		t.Fatalf("expected vat 0.07, got %s", got.VAT)
	}
	if got.Total.String() != "0.39" {
		t.Fatalf("expected total 0.39, got %s", got.Total)
	}
}

func TestComputeLine_ZeroQuantity(t *testing.T) {
	got := ComputeLine(0, dec("100"), dec("80"), dec("22"))

	for name, v := range map[string]money.Money{
		"gross": got.Gross, "net": got.Net, "vat": got.VAT, "total": got.Total,
	} {
		if !v.IsZero() {
			t.Fatalf("expected zero %s, got %s", name, v)
		}
	}
}

func TestComputeLine_ZeroVATRate(t *testing.T) {
	got := ComputeLine(10, dec("100"), dec("80"), dec("0"))

	if !got.VAT.IsZero() {
		t.Fatalf("expected zero vat, got %s", got.VAT)
	}
	if !got.Total.Equal(got.Net) {
		t.Fatalf("expected total %s to equal net %s", got.Total, got.Net)
	}
}

func twoLineFixture() []LineItem {
	return []LineItem{
		{LineNumber: 10, EntityCode: "PMP-4410", Quantity: 10, ListPrice: dec("100"), UnitPrice: dec("80"), VATRate: dec("22")},
		{LineNumber: 20, EntityCode: "FLT-0907", Quantity: 1, ListPrice: dec("300"), UnitPrice: dec("250"), VATRate: dec("10")},
	}
}

func TestComputeTotals_TwoLines(t *testing.T) {
	got := ComputeTotals(twoLineFixture(), nil, money.Zero())

	if got.SubtotalGross.String() != "1300.00" {
		t.Fatalf("expected subtotal gross 1300.00, got %s", got.SubtotalGross)
	}
	if got.SubtotalNet.String() != "1050.00" {
		t.Fatalf("expected subtotal net 1050.00, got %s", got.SubtotalNet)
	}
	if got.TotalDiscount.String() != "250.00" {
		t.Fatalf("expected total discount 250.00, got %s", got.TotalDiscount)
	}
	if got.TotalVAT.String() != "201.00" {
		t.Fatalf("expected total vat 201.00, got %s", got.TotalVAT)
	}
	if got.OrderTotal.String() != "1251.00" {
		t.Fatalf("expected order total 1251.00, got %s", got.OrderTotal)
	}
}

func TestComputeTotals_ShippingAddedAfterNetAndVAT(t *testing.T) {
	items := twoLineFixture()[:1]
	got := ComputeTotals(items, nil, money.FromFloat(15))

	if got.OrderTotal.String() != "991.00" {
		t.Fatalf("expected order total 991.00, got %s", got.OrderTotal)
	}
}

func TestComputeTotals_EmptyOrderIgnoresShipping(t *testing.T) {
	got := ComputeTotals(nil, nil, money.FromFloat(25))

	if !got.SubtotalGross.IsZero() || !got.SubtotalNet.IsZero() || !got.TotalDiscount.IsZero() ||
		!got.TotalVAT.IsZero() || !got.OrderTotal.IsZero() {
		t.Fatalf("expected all-zero totals for an empty order, got %+v", got)
	}
}

func TestComputeTotals_PercentageCartDiscount(t *testing.T) {
	discounts := []CartDiscount{{Type: DiscountPercentage, Value: dec("10")}}
	got := ComputeTotals(twoLineFixture(), discounts, money.Zero())

	if got.SubtotalNet.String() != "945.00" {
		t.Fatalf("expected subtotal net 945.00, got %s", got.SubtotalNet)
	}
	if got.TotalDiscount.String() != "355.00" {
		t.Fatalf("expected total discount 355.00, got %s", got.TotalDiscount)
	}
	if got.TotalVAT.String() != "201.00" {
		t.Fatalf("expected vat unchanged at 201.00, got %s", got.TotalVAT)
	}
	if got.OrderTotal.String() != "1146.00" {
		t.Fatalf("expected order total 1146.00, got %s", got.OrderTotal)
	}
}

func TestComputeTotals_FixedCartDiscountCappedAtNet(t *testing.T) {
	discounts := []CartDiscount{{Type: DiscountFixed, Value: dec("2000")}}
	got := ComputeTotals(twoLineFixture(), discounts, money.Zero())

	if !got.SubtotalNet.IsZero() {
		t.Fatalf("expected subtotal net capped at 0.00, got %s", got.SubtotalNet)
	}
	if got.TotalDiscount.String() != "1300.00" {
		t.Fatalf("expected total discount 1300.00, got %s", got.TotalDiscount)
	}
	if got.OrderTotal.String() != "201.00" {
		t.Fatalf("expected order total 201.00, got %s", got.OrderTotal)
	}
}

func TestComputeTotals_CartDiscountsApplySequentially(t *testing.T) {
	discounts := []CartDiscount{
		{Type: DiscountPercentage, Value: dec("10")},
		{Type: DiscountFixed, Value: dec("45")},
	}
	got := ComputeTotals(twoLineFixture(), discounts, money.Zero())

	// 1050 -> 945 after 10%, -> 900 after the fixed 45.
	if got.SubtotalNet.String() != "900.00" {
		t.Fatalf("expected subtotal net 900.00, got %s", got.SubtotalNet)
	}
	if got.TotalDiscount.String() != "400.00" {
		t.Fatalf("expected total discount 400.00, got %s", got.TotalDiscount)
	}
}

func TestComputeTotals_CartDiscountRoundsOnceAtTheEnd(t *testing.T) {
	items := []LineItem{
		{LineNumber: 10, EntityCode: "A", Quantity: 1, ListPrice: dec("0.33"), UnitPrice: dec("0.33"), VATRate: dec("0")},
		{LineNumber: 20, EntityCode: "B", Quantity: 1, ListPrice: dec("0.33"), UnitPrice: dec("0.33"), VATRate: dec("0")},
		{LineNumber: 30, EntityCode: "C", Quantity: 1, ListPrice: dec("0.33"), UnitPrice: dec("0.33"), VATRate: dec("0")},
	}
	discounts := []CartDiscount{{Type: DiscountPercentage, Value: dec("10")}}

	got := ComputeTotals(items, discounts, money.Zero())

	// 0.99 - 0.099 = 0.891, rounded once: 0.89. Per-line rounding would
	// have produced 0.90.
	if got.SubtotalNet.String() != "0.89" {
		t.Fatalf("expected subtotal net 0.89, got %s", got.SubtotalNet)
	}
}

func TestComputeTotals_GiftLinesIncludedForAudit(t *testing.T) {
	items := twoLineFixture()
	items[1].IsGiftLine = true
	got := ComputeTotals(items, nil, money.Zero())

	if got.SubtotalGross.String() != "1300.00" {
		t.Fatalf("expected gift line included in gross, got %s", got.SubtotalGross)
	}
	if got.OrderTotal.String() != "1251.00" {
		t.Fatalf("expected gift line included in total, got %s", got.OrderTotal)
	}
}

func TestComputeTotals_Idempotent(t *testing.T) {
	items := twoLineFixture()
	discounts := []CartDiscount{{Type: DiscountPercentage, Value: dec("12.5")}}

	first := ComputeTotals(items, discounts, money.FromFloat(9.95))
	second := ComputeTotals(items, discounts, money.FromFloat(9.95))

	if !first.SubtotalGross.Equal(second.SubtotalGross) || !first.SubtotalNet.Equal(second.SubtotalNet) ||
		!first.TotalDiscount.Equal(second.TotalDiscount) || !first.TotalVAT.Equal(second.TotalVAT) ||
		!first.OrderTotal.Equal(second.OrderTotal) {
		t.Fatalf("expected identical totals on repeated computation: %+v vs %+v", first, second)
	}
}
