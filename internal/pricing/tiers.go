package pricing

import "strings"

// Channel identifies the fulfilment path resolved for an order quantity.
type Channel string

const (
	// ChannelMarketplace routes small orders to the external marketplace listing.
	ChannelMarketplace Channel = "marketplace"
	// ChannelCheckout routes mid-size orders to the direct cart checkout.
	ChannelCheckout Channel = "checkout"
	// ChannelQuote routes wholesale orders to a manual quote request.
	ChannelQuote Channel = "quote"
)

// Unit is the quantity unit a caller prices in. Tier ranges are unit-agnostic:
// no conversion happens between kg and piezas during tier resolution.
type Unit string

const (
	UnitKg     Unit = "kg"
	UnitPiezas Unit = "piezas"
)

// ParseUnit normalises a raw unit value.
func ParseUnit(raw string) (Unit, bool) {
	switch Unit(strings.ToLower(strings.TrimSpace(raw))) {
	case UnitKg:
		return UnitKg, true
	case UnitPiezas:
		return UnitPiezas, true
	}
	return "", false
}

// Tier is a quantity-range bucket determining the price modifier and sales
// channel. MaxQty zero marks the top tier as unbounded.
type Tier struct {
	Name        string
	MinQty      int64
	MaxQty      int64
	ModifierBps int
	Channel     Channel
	ActionURL   string
}

// Contains reports whether qty falls inside the tier's inclusive range.
func (t Tier) Contains(qty int64) bool {
	if qty < t.MinQty {
		return false
	}
	return t.MaxQty == 0 || qty <= t.MaxQty
}

// MarketplaceListingURL is the single marketplace destination for small-tier
// orders. The previous storefront shipped two diverging URLs across its
// calculator variants; this constant is the consolidated one.
const MarketplaceListingURL = "https://www.mercadolibre.com.mx/tienda/empaques-mx"

// DefaultTiers returns the fixed tier table. The boundaries and modifiers are
// established business rules and are not configurable at runtime.
func DefaultTiers() []Tier {
	return []Tier{
		{
			Name:        "Pequeña cantidad",
			MinQty:      0,
			MaxQty:      100,
			ModifierBps: 13000,
			Channel:     ChannelMarketplace,
			ActionURL:   MarketplaceListingURL,
		},
		{
			Name:        "Cantidad media",
			MinQty:      101,
			MaxQty:      300,
			ModifierBps: 11000,
			Channel:     ChannelCheckout,
		},
		{
			Name:        "Mayoreo",
			MinQty:      301,
			MaxQty:      0,
			ModifierBps: BaseBps,
			Channel:     ChannelQuote,
		},
	}
}

// ResolveTier maps a quantity to the tier whose range contains it. The tier
// table partitions the non-negative quantity domain, so lookup failures only
// happen for negative quantities or malformed tables; those fall back to the
// first tier instead of failing.
func ResolveTier(qty int64, tiers []Tier) Tier {
	for _, tier := range tiers {
		if tier.Contains(qty) {
			return tier
		}
	}
	if len(tiers) == 0 {
		return Tier{}
	}
	return tiers[0]
}
