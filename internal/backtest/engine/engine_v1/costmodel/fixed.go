package costmodel

// FixedFee charges a flat fee for every fill regardless of size.
type FixedFee struct {
	fee float64
}

// NewFixedFee creates a fixed fee cost model. Negative fees are clamped to zero.
func NewFixedFee(fee float64) CostModel {
	if fee < 0 {
		fee = 0
	}

	return &FixedFee{fee: fee}
}

func (c *FixedFee) Calculate(quantity float64, price float64) float64 {
	if quantity <= 0 {
		return 0
	}

	return c.fee
}
