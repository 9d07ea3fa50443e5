package domain

import (
	"tradeportal_backend/platform/money"

	"github.com/shopspring/decimal"
)

// LineAmounts holds the derived figures for one line.
type LineAmounts struct {
	Gross money.Money
	Net   money.Money
	VAT   money.Money
	Total money.Money
}

// OrderTotals holds the derived order-level figures.
type OrderTotals struct {
	SubtotalGross money.Money
	SubtotalNet   money.Money
	TotalDiscount money.Money
	TotalVAT      money.Money
	OrderTotal    money.Money
}

// ComputeLine derives gross, net, VAT and total for one line. Rounding is
// applied independently to each derived field, half-up to 2 decimals; the
// VAT base is the already-rounded net, matching invoice semantics.
//
// The function performs no validation (a zero quantity simply yields zero
// amounts) and never fails for numeric input.
func ComputeLine(quantity int, listPrice, unitPrice, vatRate decimal.Decimal) LineAmounts {
	qty := decimal.NewFromInt(int64(quantity))

	gross := money.New(qty.Mul(listPrice))
	net := money.New(qty.Mul(unitPrice))
	vat := money.New(net.Decimal.Mul(vatRate).Shift(-2))
	total := money.New(net.Decimal.Add(vat.Decimal))

	return LineAmounts{Gross: gross, Net: net, VAT: vat, Total: total}
}

// ComputeTotals folds all items plus cart discounts and shipping into the
// order-level figures. Cart discounts are netted against the running net
// subtotal in application order (percentage of the running value, fixed
// capped at the running value) with a single rounding at the end, so
// multi-line orders cannot accumulate per-line rounding drift.
//
// The discount total is derived from the gross/net gap rather than summed
// from discount records, which keeps the totals anchored to the line-level
// source of truth. An order without items has all-zero totals regardless of
// its shipping cost.
func ComputeTotals(items []LineItem, cartDiscounts []CartDiscount, shippingCost money.Money) OrderTotals {
	if len(items) == 0 {
		return OrderTotals{}
	}

	var grossSum, netSum, vatSum decimal.Decimal
	for _, it := range items {
		amounts := ComputeLine(it.Quantity, it.ListPrice, it.UnitPrice, it.VATRate)
		grossSum = grossSum.Add(amounts.Gross.Decimal)
		netSum = netSum.Add(amounts.Net.Decimal)
		vatSum = vatSum.Add(amounts.VAT.Decimal)
	}

	subtotalGross := money.New(grossSum)

	running := netSum
	for _, d := range cartDiscounts {
		switch d.Type {
		case DiscountPercentage:
			running = running.Sub(running.Mul(d.Value).Shift(-2))
		case DiscountFixed:
			amount := d.Value
			if amount.GreaterThan(running) {
				amount = running
			}
			running = running.Sub(amount)
		}
	}
	subtotalNet := money.New(running)

	totalVAT := money.New(vatSum)

	return OrderTotals{
		SubtotalGross: subtotalGross,
		SubtotalNet:   subtotalNet,
		TotalDiscount: subtotalGross.Sub(subtotalNet),
		TotalVAT:      totalVAT,
		OrderTotal:    money.New(subtotalNet.Decimal.Add(totalVAT.Decimal).Add(shippingCost.Decimal)),
	}
}

// recompute refreshes every derived field on the order. It runs after each
// mutation and is idempotent.
func recompute(o *Order) {
	for i := range o.Items {
		amounts := ComputeLine(o.Items[i].Quantity, o.Items[i].ListPrice, o.Items[i].UnitPrice, o.Items[i].VATRate)
		o.Items[i].LineGross = amounts.Gross
		o.Items[i].LineNet = amounts.Net
		o.Items[i].LineVAT = amounts.VAT
		o.Items[i].LineTotal = amounts.Total
	}

	totals := ComputeTotals(o.Items, o.CartDiscounts, o.ShippingCost)
	o.SubtotalGross = totals.SubtotalGross
	o.SubtotalNet = totals.SubtotalNet
	o.TotalDiscount = totals.TotalDiscount
	o.TotalVAT = totals.TotalVAT
	o.OrderTotal = totals.OrderTotal
}
