// Package indicator is the signal provider for the simulation engine: it
// precomputes technical indicator columns over a raw OHLCV series and attaches
// them to the bars before a run starts. Values are optional, None until the
// lookback window is satisfied, so strategies can hold instead of failing on
// early bars. The simulation engine itself never computes indicators.
package indicator

import (
	"github.com/quantfolio/stockdash-engine/internal/types"
	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

// Config holds the lookback windows used when attaching indicator columns.
type Config struct {
	SMAShort    int     `yaml:"sma_short" json:"sma_short"`
	SMAMid      int     `yaml:"sma_mid" json:"sma_mid"`
	SMALong     int     `yaml:"sma_long" json:"sma_long"`
	RSIPeriod   int     `yaml:"rsi_period" json:"rsi_period"`
	BBPeriod    int     `yaml:"bb_period" json:"bb_period"`
	BBStdDev    float64 `yaml:"bb_std_dev" json:"bb_std_dev"`
	MACDFast    int     `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow    int     `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal  int     `yaml:"macd_signal" json:"macd_signal"`
	StochPeriod int     `yaml:"stoch_period" json:"stoch_period"`
	StochSmooth int     `yaml:"stoch_smooth" json:"stoch_smooth"`
	VolumeSMA   int     `yaml:"volume_sma" json:"volume_sma"`
}

// DefaultConfig returns the windows the dashboard uses for daily bars.
func DefaultConfig() Config {
	return Config{
		SMAShort:    5,
		SMAMid:      25,
		SMALong:     75,
		RSIPeriod:   14,
		BBPeriod:    20,
		BBStdDev:    2.0,
		MACDFast:    12,
		MACDSlow:    26,
		MACDSignal:  9,
		StochPeriod: 14,
		StochSmooth: 3,
		VolumeSMA:   20,
	}
}

// Validate checks that every window is usable.
func (c Config) Validate() error {
	periods := map[string]int{
		"sma_short":    c.SMAShort,
		"sma_mid":      c.SMAMid,
		"sma_long":     c.SMALong,
		"rsi_period":   c.RSIPeriod,
		"bb_period":    c.BBPeriod,
		"macd_fast":    c.MACDFast,
		"macd_slow":    c.MACDSlow,
		"macd_signal":  c.MACDSignal,
		"stoch_period": c.StochPeriod,
		"stoch_smooth": c.StochSmooth,
		"volume_sma":   c.VolumeSMA,
	}

	for name, period := range periods {
		if period <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be positive, got %d", name, period)
		}
	}

	if c.BBStdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "bb_std_dev must be positive, got %f", c.BBStdDev)
	}

	if c.MACDFast >= c.MACDSlow {
		return errors.Newf(errors.ErrCodeInvalidPeriod,
			"macd_fast (%d) must be below macd_slow (%d)", c.MACDFast, c.MACDSlow)
	}

	return nil
}

// Attach computes every indicator column over the series and returns a new
// series with the values attached. The input bars are not modified.
func Attach(series types.BarSeries, cfg Config) (types.BarSeries, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	out := make(types.BarSeries, len(series))
	copy(out, series)

	closes := make([]float64, len(series))
	volumes := make([]float64, len(series))

	for i, bar := range series {
		closes[i] = bar.Close
		volumes[i] = bar.Volume
	}

	smaShort := SMA(closes, cfg.SMAShort)
	smaMid := SMA(closes, cfg.SMAMid)
	smaLong := SMA(closes, cfg.SMALong)
	rsi := RSI(closes, cfg.RSIPeriod)
	macdLine, macdSignal, macdHist := MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	bbUpper, bbMiddle, bbLower := BollingerBands(closes, cfg.BBPeriod, cfg.BBStdDev)
	stochK, stochD := Stochastic(series, cfg.StochPeriod, cfg.StochSmooth)
	volumeSMA := SMA(volumes, cfg.VolumeSMA)

	for i := range out {
		out[i].Indicators = types.IndicatorSet{
			SMA5:       smaShort[i],
			SMA25:      smaMid[i],
			SMA75:      smaLong[i],
			RSI:        rsi[i],
			MACD:       macdLine[i],
			MACDSignal: macdSignal[i],
			MACDHist:   macdHist[i],
			BBUpper:    bbUpper[i],
			BBMiddle:   bbMiddle[i],
			BBLower:    bbLower[i],
			StochK:     stochK[i],
			StochD:     stochD[i],
			VolumeSMA:  volumeSMA[i],
		}
	}

	return out, nil
}
