package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var engine = Engine{FreeShippingMin: 999, ShippingFee: 50, TaxRateBP: 1800}

func TestQuote(t *testing.T) {
	b := engine.Quote([]Line{
		{UnitPriceCents: 500, Qty: 2},
		{UnitPriceCents: 300, Qty: 1},
	})

	assert.Equal(t, 1300, b.ItemsCents)
	assert.Equal(t, 0, b.ShippingCents) // above free-shipping threshold
	assert.Equal(t, 234, b.TaxCents)    // round(1300 * 0.18)
	assert.Equal(t, 1534, b.TotalCents)
}

func TestQuoteWithShippingFee(t *testing.T) {
	b := engine.Quote([]Line{{UnitPriceCents: 100, Qty: 3}})

	assert.Equal(t, 300, b.ItemsCents)
	assert.Equal(t, 50, b.ShippingCents)
	assert.Equal(t, 54, b.TaxCents)
	assert.Equal(t, 404, b.TotalCents)
}

func TestFreeShippingBoundary(t *testing.T) {
	at := engine.Quote([]Line{{UnitPriceCents: 999, Qty: 1}})
	assert.Equal(t, 0, at.ShippingCents)

	below := engine.Quote([]Line{{UnitPriceCents: 998, Qty: 1}})
	assert.Equal(t, 50, below.ShippingCents)
}

func TestTaxRoundsHalfUp(t *testing.T) {
	// 3 * 0.18 = 0.54 -> 1
	b := engine.Quote([]Line{{UnitPriceCents: 3, Qty: 1}})
	assert.Equal(t, 1, b.TaxCents)

	// 2 * 0.18 = 0.36 -> 0
	b = engine.Quote([]Line{{UnitPriceCents: 2, Qty: 1}})
	assert.Equal(t, 0, b.TaxCents)
}

func TestEmptyLines(t *testing.T) {
	b := engine.Quote(nil)
	assert.Equal(t, 0, b.ItemsCents)
	assert.Equal(t, 50, b.ShippingCents)
	assert.Equal(t, 50, b.TotalCents)
}
