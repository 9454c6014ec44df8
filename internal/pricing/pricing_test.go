package pricing

import (
	"testing"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustQuote(t *testing.T, in Input) Breakdown {
	t.Helper()
	b, err := Quote(in)
	require.NoError(t, err)
	return b
}

func TestQuote_PremiumPairNoExtras(t *testing.T) {
	b := mustQuote(t, Input{Lines: []Line{{Category: catalog.CategoryPremium, Quantity: 2}}})

	assert.Equal(t, int64(3000), b.Base)
	assert.Zero(t, b.AddOnsHundredths)
	assert.Zero(t, b.Insurance)
	assert.Equal(t, int64(240), b.ConvenienceFee)
	assert.Equal(t, int64(583), b.GST)
	assert.Equal(t, int64(3823), b.Total)
	assert.Equal(t, 2, b.SeatCount)

	require.Len(t, b.Lines, 1)
	assert.Equal(t, LineItem{
		Category:  catalog.CategoryPremium,
		Name:      "Premium",
		UnitPrice: 1500,
		Quantity:  2,
		Amount:    3000,
	}, b.Lines[0])
}

func TestQuote_DiscountedAddOnKeptExact(t *testing.T) {
	b := mustQuote(t, Input{
		Lines:  []Line{{Category: catalog.CategoryEconomy, Quantity: 1}},
		AddOns: []catalog.AddOnID{catalog.AddOnFoodCombo},
	})

	assert.Equal(t, int64(400), b.Base)
	assert.Equal(t, int64(76415), b.AddOnsHundredths)
	assert.Equal(t, int64(764), b.AddOns)
	assert.Equal(t, int64(93), b.ConvenienceFee)
	assert.Equal(t, int64(226), b.GST)
	assert.Equal(t, int64(1483), b.Total)

	require.Len(t, b.AddOnItems, 1)
	assert.Equal(t, int64(76415), b.AddOnItems[0].NetHundredths)
	assert.Equal(t, int64(764), b.AddOnItems[0].Net)
}

func TestQuote_InsuranceIsOutsideGSTBase(t *testing.T) {
	without := mustQuote(t, Input{Lines: []Line{{Category: catalog.CategoryVIP, Quantity: 1}}})
	with := mustQuote(t, Input{Lines: []Line{{Category: catalog.CategoryVIP, Quantity: 1}}, Insurance: true})

	assert.Equal(t, int64(150), with.Insurance)
	assert.Equal(t, without.ConvenienceFee, with.ConvenienceFee)
	assert.Equal(t, without.GST, with.GST)
	assert.Equal(t, without.Total+150, with.Total)
}

func TestQuote_MixedCategoryLines(t *testing.T) {
	b := mustQuote(t, Input{Lines: []Line{
		{Category: catalog.CategoryStandard, Quantity: 2},
		{Category: catalog.CategoryVIP, Quantity: 1},
	}})

	assert.Equal(t, int64(4600), b.Base)
	assert.Equal(t, 3, b.SeatCount)
	// fee 368, gst round(4968*0.18)=894.24
	assert.Equal(t, int64(368), b.ConvenienceFee)
	assert.Equal(t, int64(894), b.GST)
	assert.Equal(t, int64(5862), b.Total)
}

func TestQuote_AddOnsDedupedInCatalogOrder(t *testing.T) {
	b := mustQuote(t, Input{
		Lines: []Line{{Category: catalog.CategoryEconomy, Quantity: 1}},
		AddOns: []catalog.AddOnID{
			catalog.AddOnFastTrack, catalog.AddOnParking, catalog.AddOnFastTrack,
		},
	})

	require.Len(t, b.AddOnItems, 2)
	assert.Equal(t, catalog.AddOnParking, b.AddOnItems[0].ID)
	assert.Equal(t, catalog.AddOnFastTrack, b.AddOnItems[1].ID)
	assert.Equal(t, int64(69900), b.AddOnsHundredths)
}

func TestQuote_Deterministic(t *testing.T) {
	in := Input{
		Lines:     []Line{{Category: catalog.CategoryPremium, Quantity: 3}},
		AddOns:    []catalog.AddOnID{catalog.AddOnMerchPack, catalog.AddOnFoodCombo},
		Insurance: true,
	}
	first := mustQuote(t, in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, mustQuote(t, in))
	}
}

func TestQuote_Empty(t *testing.T) {
	b := mustQuote(t, Input{})
	assert.Zero(t, b.Total)
	assert.Zero(t, b.SeatCount)
	assert.Empty(t, b.Lines)
}

func TestQuote_RejectsUnknownIDs(t *testing.T) {
	_, err := Quote(Input{Lines: []Line{{Category: "balcony", Quantity: 2}}})
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)

	_, err = Quote(Input{
		Lines:  []Line{{Category: catalog.CategoryEconomy, Quantity: 1}},
		AddOns: []catalog.AddOnID{catalog.AddOnParking, "spa"},
	})
	assert.ErrorIs(t, err, catalog.ErrUnknownAddOn)
}

func TestDivRound(t *testing.T) {
	tests := []struct {
		n, d, want int64
	}{
		{n: 150, d: 100, want: 2},
		{n: 149, d: 100, want: 1},
		{n: 250, d: 100, want: 3},
		{n: -150, d: 100, want: -2},
		{n: 0, d: 100, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, divRound(tt.n, tt.d), "%d/%d", tt.n, tt.d)
	}
}
