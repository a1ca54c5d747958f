package costmodel

// Proportional charges a fraction of the fill notional, modeling a spread.
type Proportional struct {
	rate float64
}

// NewProportional creates a proportional cost model with the given spread
// rate, e.g. 0.001 for 10 basis points. Negative rates are clamped to zero.
func NewProportional(rate float64) CostModel {
	if rate < 0 {
		rate = 0
	}

	return &Proportional{rate: rate}
}

func (c *Proportional) Calculate(quantity float64, price float64) float64 {
	if quantity <= 0 || price <= 0 {
		return 0
	}

	return quantity * price * c.rate
}
