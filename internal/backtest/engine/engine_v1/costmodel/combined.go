package costmodel

// Combined charges a flat fee plus a proportional spread on every fill.
type Combined struct {
	fixed        CostModel
	proportional CostModel
}

// NewCombined creates a cost model stacking a fixed fee and a spread rate.
func NewCombined(fee float64, rate float64) CostModel {
	return &Combined{
		fixed:        NewFixedFee(fee),
		proportional: NewProportional(rate),
	}
}

func (c *Combined) Calculate(quantity float64, price float64) float64 {
	return c.fixed.Calculate(quantity, price) + c.proportional.Calculate(quantity, price)
}
