package indicator

import "github.com/moznion/go-optional"

// SMA computes the simple moving average over the given window. The first
// period-1 entries are None.
func SMA(values []float64, period int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(values))

	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64

	for i, v := range values {
		sum += v

		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			out[i] = optional.Some(sum / float64(period))
		}
	}

	return out
}

// EMA computes the exponential moving average with smoothing 2/(period+1),
// seeded with the SMA of the first window.
func EMA(values []float64, period int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(values))

	if period <= 0 || len(values) < period {
		return out
	}

	var seed float64
	for i := 0; i < period; i++ {
		seed += values[i]
	}

	seed /= float64(period)
	out[period-1] = optional.Some(seed)

	alpha := 2.0 / (float64(period) + 1.0)
	prev := seed

	for i := period; i < len(values); i++ {
		prev = (values[i]-prev)*alpha + prev
		out[i] = optional.Some(prev)
	}

	return out
}
