package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/quantfolio/stockdash-engine/internal/types"
)

// Stochastic computes the stochastic oscillator: %K compares the close to the
// high/low range of the window, %D smooths %K with an SMA. A flat window
// (high == low) reports %K = 50.
func Stochastic(series types.BarSeries, period, smooth int) (k, d []optional.Option[float64]) {
	n := len(series)
	k = make([]optional.Option[float64], n)
	d = make([]optional.Option[float64], n)

	if period <= 0 || smooth <= 0 || n < period {
		return k, d
	}

	kValues := make([]float64, 0, n-period+1)

	for i := period - 1; i < n; i++ {
		highest := series[i-period+1].High
		lowest := series[i-period+1].Low

		for j := i - period + 2; j <= i; j++ {
			if series[j].High > highest {
				highest = series[j].High
			}

			if series[j].Low < lowest {
				lowest = series[j].Low
			}
		}

		var value float64
		if highest == lowest {
			value = 50
		} else {
			value = (series[i].Close - lowest) / (highest - lowest) * 100
		}

		k[i] = optional.Some(value)
		kValues = append(kValues, value)
	}

	smoothed := SMA(kValues, smooth)

	for j, v := range smoothed {
		if v.IsSome() {
			d[j+period-1] = v
		}
	}

	return k, d
}
