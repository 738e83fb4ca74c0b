// Package pricing turns order lines into a price breakdown. Pure
// arithmetic on minor currency units, no I/O.
package pricing

type Line struct {
	UnitPriceCents int
	Qty            int
}

type Breakdown struct {
	ItemsCents    int `json:"items_cents"`
	ShippingCents int `json:"shipping_cents"`
	TaxCents      int `json:"tax_cents"`
	TotalCents    int `json:"total_cents"`
}

type Engine struct {
	// Orders at or above this item total ship free.
	FreeShippingMin int
	ShippingFee     int
	// Tax rate in basis points (1800 = 18%).
	TaxRateBP int
}

// Quote computes the breakdown. Rounding happens exactly once, on the tax
// component, half up, before summation.
func (e Engine) Quote(lines []Line) Breakdown {
	var b Breakdown
	for _, l := range lines {
		b.ItemsCents += l.UnitPriceCents * l.Qty
	}
	if b.ItemsCents < e.FreeShippingMin {
		b.ShippingCents = e.ShippingFee
	}
	b.TaxCents = (b.ItemsCents*e.TaxRateBP + 5000) / 10000
	b.TotalCents = b.ItemsCents + b.ShippingCents + b.TaxCents
	return b
}
