package types

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

// IndicatorName identifies a precomputed indicator column attached to a bar.
type IndicatorName string

const (
	IndicatorSMA5       IndicatorName = "sma_5"
	IndicatorSMA25      IndicatorName = "sma_25"
	IndicatorSMA75      IndicatorName = "sma_75"
	IndicatorRSI        IndicatorName = "rsi"
	IndicatorMACD       IndicatorName = "macd"
	IndicatorMACDSignal IndicatorName = "macd_signal"
	IndicatorMACDHist   IndicatorName = "macd_histogram"
	IndicatorBBUpper    IndicatorName = "bb_upper"
	IndicatorBBMiddle   IndicatorName = "bb_middle"
	IndicatorBBLower    IndicatorName = "bb_lower"
	IndicatorStochK     IndicatorName = "stoch_k"
	IndicatorStochD     IndicatorName = "stoch_d"
	IndicatorVolumeSMA  IndicatorName = "volume_sma"
)

// IndicatorSet holds the precomputed indicator values attached to one bar.
// A None value means the indicator is not yet available at that bar
// (insufficient lookback), which strategies must treat as "hold".
type IndicatorSet struct {
	SMA5       optional.Option[float64] `json:"sma_5" yaml:"sma_5"`
	SMA25      optional.Option[float64] `json:"sma_25" yaml:"sma_25"`
	SMA75      optional.Option[float64] `json:"sma_75" yaml:"sma_75"`
	RSI        optional.Option[float64] `json:"rsi" yaml:"rsi"`
	MACD       optional.Option[float64] `json:"macd" yaml:"macd"`
	MACDSignal optional.Option[float64] `json:"macd_signal" yaml:"macd_signal"`
	MACDHist   optional.Option[float64] `json:"macd_histogram" yaml:"macd_histogram"`
	BBUpper    optional.Option[float64] `json:"bb_upper" yaml:"bb_upper"`
	BBMiddle   optional.Option[float64] `json:"bb_middle" yaml:"bb_middle"`
	BBLower    optional.Option[float64] `json:"bb_lower" yaml:"bb_lower"`
	StochK     optional.Option[float64] `json:"stoch_k" yaml:"stoch_k"`
	StochD     optional.Option[float64] `json:"stoch_d" yaml:"stoch_d"`
	VolumeSMA  optional.Option[float64] `json:"volume_sma" yaml:"volume_sma"`
}

// Get returns the indicator value for the given name.
// Unknown names return None.
func (s IndicatorSet) Get(name IndicatorName) optional.Option[float64] {
	switch name {
	case IndicatorSMA5:
		return s.SMA5
	case IndicatorSMA25:
		return s.SMA25
	case IndicatorSMA75:
		return s.SMA75
	case IndicatorRSI:
		return s.RSI
	case IndicatorMACD:
		return s.MACD
	case IndicatorMACDSignal:
		return s.MACDSignal
	case IndicatorMACDHist:
		return s.MACDHist
	case IndicatorBBUpper:
		return s.BBUpper
	case IndicatorBBMiddle:
		return s.BBMiddle
	case IndicatorBBLower:
		return s.BBLower
	case IndicatorStochK:
		return s.StochK
	case IndicatorStochD:
		return s.StochD
	case IndicatorVolumeSMA:
		return s.VolumeSMA
	default:
		return optional.None[float64]()
	}
}

// Bar is one OHLCV time step plus its precomputed indicator values.
// Bars are immutable once produced.
type Bar struct {
	Time       time.Time    `json:"time" yaml:"time" csv:"time"`
	Open       float64      `json:"open" yaml:"open" csv:"open"`
	High       float64      `json:"high" yaml:"high" csv:"high"`
	Low        float64      `json:"low" yaml:"low" csv:"low"`
	Close      float64      `json:"close" yaml:"close" csv:"close"`
	Volume     float64      `json:"volume" yaml:"volume" csv:"volume"`
	Indicators IndicatorSet `json:"indicators" yaml:"indicators"`
}

// BarSeries is an ordered sequence of bars with strictly increasing timestamps.
type BarSeries []Bar

// Validate checks the series for structural integrity before a simulation
// starts: non-empty, strictly increasing timestamps, sane prices.
func (s BarSeries) Validate() error {
	if len(s) == 0 {
		return errors.New(errors.ErrCodeEmptySeries, "bar series is empty")
	}

	for i, bar := range s {
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return errors.Newf(errors.ErrCodeInvalidBar, "bar %d has non-positive price", i)
		}

		if bar.High < bar.Low {
			return errors.Newf(errors.ErrCodeInvalidBar, "bar %d has high below low", i)
		}

		if i > 0 && !s[i-1].Time.Before(bar.Time) {
			return errors.Newf(errors.ErrCodeNonMonotonicSeries,
				"bar %d timestamp %s is not after bar %d timestamp %s",
				i, bar.Time.Format(time.RFC3339), i-1, s[i-1].Time.Format(time.RFC3339))
		}
	}

	return nil
}

// RequireIndicators verifies that every listed indicator becomes available at
// some bar of the series. A column that is None on every bar means the signal
// provider never computed it, which is a configuration problem rather than an
// early-lookback gap.
func (s BarSeries) RequireIndicators(names []IndicatorName) error {
	for _, name := range names {
		available := false

		for _, bar := range s {
			if bar.Indicators.Get(name).IsSome() {
				available = true

				break
			}
		}

		if !available {
			return errors.Newf(errors.ErrCodeMissingIndicator,
				"indicator %q is absent from the entire series", name)
		}
	}

	return nil
}
