package freight_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/empaques-mx/backend-empaques/internal/freight"
	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

func testZone() freight.Zone {
	// baseCost $150.00, $2.50 per kg
	return freight.Zone{ID: "cdmx-metro", Name: "CDMX", BaseCost: 15000, CostPerKg: 250}
}

func TestTotalWeightGrams(t *testing.T) {
	require.Equal(t, int64(150_000), freight.TotalWeightGrams(150, pricing.UnitKg, 100))
	require.Equal(t, int64(5_000), freight.TotalWeightGrams(50, pricing.UnitPiezas, 100))
	require.Equal(t, int64(0), freight.TotalWeightGrams(0, pricing.UnitKg, 100))
	require.Equal(t, int64(0), freight.TotalWeightGrams(-3, pricing.UnitPiezas, 100))
}

func TestMarketplaceShippingAlwaysFree(t *testing.T) {
	for _, weight := range []int64{0, 5_000, 150_000, 900_000} {
		for _, zone := range freight.DefaultZones() {
			est := freight.EstimateCost(weight, zone, pricing.ChannelMarketplace)
			require.Equal(t, pricing.Money(0), est.Cost)
			require.False(t, est.Pending)
			require.Equal(t, freight.NoteIncluded, est.Note)
		}
	}
}

func TestVolumeDiscountThresholds(t *testing.T) {
	zone := testZone()

	// 150 kg: 15000 + 150*250 = 52500, x0.90 = 47250, rounded to $473.00.
	est := freight.EstimateCost(150_000, zone, pricing.ChannelCheckout)
	require.False(t, est.Pending)
	require.Equal(t, pricing.Money(47300), est.Cost)

	// 50 kg: below the first threshold, no discount. 15000 + 12500 = 27500.
	est = freight.EstimateCost(50_000, zone, pricing.ChannelCheckout)
	require.Equal(t, pricing.Money(27500), est.Cost)

	// 100 kg sits on the boundary and is not discounted.
	est = freight.EstimateCost(100_000, zone, pricing.ChannelCheckout)
	require.Equal(t, pricing.Money(40000), est.Cost)

	// 400 kg: 15000 + 100000 = 115000, x0.75 = 86250, rounded to $863.00.
	est = freight.EstimateCost(400_000, zone, pricing.ChannelCheckout)
	require.Equal(t, pricing.Money(86300), est.Cost)
}

func TestHeavyQuoteShipmentsArePending(t *testing.T) {
	zone := testZone()

	est := freight.EstimateCost(501_000, zone, pricing.ChannelQuote)
	require.True(t, est.Pending)
	require.Equal(t, pricing.Money(0), est.Cost)
	require.Equal(t, freight.NotePending, est.Note)

	// Exactly 500 kg still uses the standard table.
	est = freight.EstimateCost(500_000, zone, pricing.ChannelQuote)
	require.False(t, est.Pending)
	require.NotZero(t, est.Cost)

	// The exemption only applies to the quote channel.
	est = freight.EstimateCost(501_000, zone, pricing.ChannelCheckout)
	require.False(t, est.Pending)
	require.NotZero(t, est.Cost)
}

func TestZoneByID(t *testing.T) {
	zones := freight.DefaultZones()
	require.Equal(t, "norte", freight.ZoneByID("norte", zones).ID)
	require.Equal(t, "cdmx-metro", freight.ZoneByID("", zones).ID)
	require.Equal(t, "cdmx-metro", freight.ZoneByID("luna", zones).ID)
	require.Equal(t, "cdmx-metro", zones[0].ID)
}
