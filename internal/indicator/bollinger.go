package indicator

import (
	"math"

	"github.com/moznion/go-optional"
)

// BollingerBands computes the upper, middle and lower bands: the middle band
// is the SMA over the window, the outer bands sit stdDev population standard
// deviations away.
func BollingerBands(closes []float64, period int, stdDev float64) (upper, middle, lower []optional.Option[float64]) {
	n := len(closes)
	upper = make([]optional.Option[float64], n)
	middle = make([]optional.Option[float64], n)
	lower = make([]optional.Option[float64], n)

	if period <= 0 || n < period {
		return upper, middle, lower
	}

	sma := SMA(closes, period)

	for i := period - 1; i < n; i++ {
		mean := sma[i].Unwrap()

		var variance float64
		for j := i - period + 1; j <= i; j++ {
			diff := closes[j] - mean
			variance += diff * diff
		}

		sigma := math.Sqrt(variance / float64(period))

		middle[i] = optional.Some(mean)
		upper[i] = optional.Some(mean + stdDev*sigma)
		lower[i] = optional.Some(mean - stdDev*sigma)
	}

	return upper, middle, lower
}
