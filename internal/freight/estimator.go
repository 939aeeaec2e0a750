package freight

import "github.com/empaques-mx/backend-empaques/internal/pricing"

// Weights are carried in integral grams so the money path stays in integer
// arithmetic end to end.
const (
	// HeavyQuoteThresholdGrams is the weight above which quote-channel
	// shipments skip the standard table and are priced manually.
	HeavyQuoteThresholdGrams int64 = 500_000

	discountTier1Grams int64 = 100_000
	discountTier2Grams int64 = 300_000
)

const (
	// NoteIncluded marks marketplace shipments whose carrier cost is bundled
	// into the listing price.
	NoteIncluded = "Envío incluido en el precio de marketplace"
	// NotePending marks heavy quote-channel shipments whose freight is
	// resolved manually by the sales team.
	NotePending = "Flete a cotizar: envío mayor a 500 kg"
)

// Estimate is the freight computation result. Pending means no numeric cost
// was produced and the real cost is resolved outside this system.
type Estimate struct {
	Cost    pricing.Money `json:"cost"`
	Note    string        `json:"note,omitempty"`
	Pending bool          `json:"pending"`
}

// TotalWeightGrams converts an order quantity into total shipment weight.
// Quantities in kg convert directly; piezas multiply by the per-unit weight.
func TotalWeightGrams(qty int64, unit pricing.Unit, unitWeightGrams int64) int64 {
	if qty <= 0 {
		return 0
	}
	if unit == pricing.UnitKg {
		return qty * 1000
	}
	return qty * unitWeightGrams
}

// EstimateCost computes the shipping estimate for a shipment weight, zone and
// resolved sales channel. Pure function of its inputs.
func EstimateCost(weightGrams int64, zone Zone, channel pricing.Channel) Estimate {
	if channel == pricing.ChannelMarketplace {
		return Estimate{Cost: 0, Note: NoteIncluded}
	}
	if channel == pricing.ChannelQuote && weightGrams > HeavyQuoteThresholdGrams {
		return Estimate{Pending: true, Note: NotePending}
	}
	cost := zone.BaseCost + zone.CostPerKg*pricing.Money(weightGrams)/1000
	switch {
	case weightGrams > discountTier2Grams:
		cost = cost * 75 / 100
	case weightGrams > discountTier1Grams:
		cost = cost * 90 / 100
	}
	return Estimate{Cost: roundToPeso(cost)}
}

// roundToPeso rounds a centavo amount to the nearest whole peso.
func roundToPeso(m pricing.Money) pricing.Money {
	return (m + 50) / 100 * 100
}
