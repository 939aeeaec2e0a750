package pricing

import "fmt"

// Money represents a monetary value stored in minor units (centavos).
type Money = int64

// BaseBps is the basis-point value representing an unmodified price.
const BaseBps = 10000

// ApplyModifier scales a base unit price by a tier modifier expressed in
// basis points (13000 = x1.30).
func ApplyModifier(base Money, modifierBps int) Money {
	return base * Money(modifierBps) / BaseBps
}

// Item describes a line item used for totals calculation.
type Item struct {
	Qty       int64
	UnitPrice Money
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal Money
	Shipping Money
	Total    Money
}

// Summarize calculates order totals given the provided line items and a
// shipping estimate. Tax is not computed here; callers display the fixed
// "+ IVA" suffix separately.
func Summarize(items []Item, shipping Money) Summary {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += it.Qty * it.UnitPrice
	}
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}
}

// FormatMXN renders a Money value using the storefront display format.
func FormatMXN(m Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s$%d.%02d MXN", sign, m/100, m%100)
}
