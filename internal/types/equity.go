package types

import "time"

// EquityPoint is one sample of the equity curve: total equity at one bar's
// close, along with the state components that produced it.
type EquityPoint struct {
	Time     time.Time `json:"time" yaml:"time" csv:"time"`
	Equity   float64   `json:"equity" yaml:"equity" csv:"equity"`
	Cash     float64   `json:"cash" yaml:"cash" csv:"cash"`
	Quantity float64   `json:"quantity" yaml:"quantity" csv:"quantity"`
	Close    float64   `json:"close" yaml:"close" csv:"close"`
}

// EquityCurve is the per-bar equity series of one run. Its length always
// equals the number of bars processed, trade or no trade.
type EquityCurve []EquityPoint

// Returns computes the per-step simple returns of the curve.
// A curve with fewer than two points has no returns.
func (c EquityCurve) Returns() []float64 {
	if len(c) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(c)-1)

	for i := 1; i < len(c); i++ {
		prev := c[i-1].Equity
		if prev == 0 {
			returns = append(returns, 0)

			continue
		}

		returns = append(returns, (c[i].Equity-prev)/prev)
	}

	return returns
}

// Final returns the last point of the curve and true, or a zero point and
// false for an empty curve.
func (c EquityCurve) Final() (EquityPoint, bool) {
	if len(c) == 0 {
		return EquityPoint{}, false
	}

	return c[len(c)-1], true
}
