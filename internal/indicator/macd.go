package indicator

import "github.com/moznion/go-optional"

// MACD computes the MACD line (fast EMA - slow EMA), its signal line (EMA of
// the MACD line) and the histogram (line - signal).
func MACD(closes []float64, fast, slow, signal int) (line, signalLine, histogram []optional.Option[float64]) {
	n := len(closes)
	line = make([]optional.Option[float64], n)
	signalLine = make([]optional.Option[float64], n)
	histogram = make([]optional.Option[float64], n)

	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow || n < slow {
		return line, signalLine, histogram
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	// The MACD line exists wherever both EMAs exist, i.e. from slow-1 on.
	macdValues := make([]float64, 0, n-slow+1)

	for i := slow - 1; i < n; i++ {
		v := fastEMA[i].Unwrap() - slowEMA[i].Unwrap()
		line[i] = optional.Some(v)
		macdValues = append(macdValues, v)
	}

	signalEMA := EMA(macdValues, signal)

	for j, v := range signalEMA {
		if v.IsNone() {
			continue
		}

		i := j + slow - 1
		signalLine[i] = v
		histogram[i] = optional.Some(line[i].Unwrap() - v.Unwrap())
	}

	return line, signalLine, histogram
}
