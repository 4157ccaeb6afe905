package cart

import "github.com/shopspring/decimal"

var (
	// ShippingFee is charged on carts whose subtotal is below FreeShippingThreshold.
	ShippingFee = decimal.NewFromInt(50)
	// FreeShippingThreshold is the subtotal from which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(500)
)

// Totals is the price breakdown of a set of cart lines.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	// AmountToFreeShipping is how much more the customer has to add to stop
	// paying shipping. Zero outside the paid-shipping band.
	AmountToFreeShipping decimal.Decimal
}

// ComputeTotals prices lines. Shipping applies iff 0 < subtotal < threshold,
// which covers the empty cart and the free-shipping case with one rule.
func ComputeTotals(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}

	t := Totals{
		Subtotal:             subtotal,
		Shipping:             decimal.Zero,
		AmountToFreeShipping: decimal.Zero,
	}
	if subtotal.IsPositive() && subtotal.LessThan(FreeShippingThreshold) {
		t.Shipping = ShippingFee
		t.AmountToFreeShipping = FreeShippingThreshold.Sub(subtotal)
	}
	t.Total = subtotal.Add(t.Shipping)
	return t
}
