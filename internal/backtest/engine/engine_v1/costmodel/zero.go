package costmodel

// ZeroCost implements CostModel with no transaction cost.
type ZeroCost struct{}

// NewZeroCost creates a new zero cost model.
func NewZeroCost() CostModel {
	return &ZeroCost{}
}

// Calculate returns 0 for any fill.
func (c *ZeroCost) Calculate(quantity float64, price float64) float64 {
	return 0.0
}
