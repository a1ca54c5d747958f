package indicator

import "github.com/moznion/go-optional"

// RSI computes the Relative Strength Index with Wilder smoothing. Values are
// None until period price changes have been observed. A window with no losses
// reports 100, a window with no gains reports 0.
func RSI(closes []float64, period int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(closes))

	if period <= 0 || len(closes) <= period {
		return out
	}

	var avgGain, avgLoss float64

	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = optional.Some(rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]

		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = optional.Some(rsiValue(avgGain, avgLoss))
	}

	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - 100/(1+rs)
}
