package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

type BarTestSuite struct {
	suite.Suite
}

func TestBarSuite(t *testing.T) {
	suite.Run(t, new(BarTestSuite))
}

func makeSeries(n int) BarSeries {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(BarSeries, 0, n)

	for i := 0; i < n; i++ {
		price := 100.0 + float64(i)
		series = append(series, Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price + 0.5,
			Volume: 10000,
		})
	}

	return series
}

func (suite *BarTestSuite) TestValidateOk() {
	suite.NoError(makeSeries(5).Validate())
}

func (suite *BarTestSuite) TestValidateEmpty() {
	err := BarSeries{}.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeEmptySeries))
}

func (suite *BarTestSuite) TestValidateNonMonotonic() {
	series := makeSeries(4)
	series[2].Time = series[1].Time

	err := series.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNonMonotonicSeries))

	series = makeSeries(4)
	series[3].Time = series[0].Time.AddDate(0, 0, -1)
	suite.True(errors.HasCode(series.Validate(), errors.ErrCodeNonMonotonicSeries))
}

func (suite *BarTestSuite) TestValidateBadPrices() {
	tests := []struct {
		name   string
		mutate func(*Bar)
	}{
		{"zero close", func(b *Bar) { b.Close = 0 }},
		{"negative open", func(b *Bar) { b.Open = -1 }},
		{"high below low", func(b *Bar) { b.High = b.Low - 1 }},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			series := makeSeries(3)
			tc.mutate(&series[1])

			err := series.Validate()
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidBar))
		})
	}
}

func (suite *BarTestSuite) TestRequireIndicators() {
	series := makeSeries(3)
	// RSI becomes available at the last bar only, which is enough.
	series[2].Indicators.RSI = optional.Some(42.0)

	suite.NoError(series.RequireIndicators([]IndicatorName{IndicatorRSI}))

	err := series.RequireIndicators([]IndicatorName{IndicatorMACDHist})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingIndicator))
}

func (suite *BarTestSuite) TestIndicatorSetGet() {
	set := IndicatorSet{
		SMA25:    optional.Some(101.5),
		MACDHist: optional.Some(-0.3),
	}

	suite.Equal(101.5, set.Get(IndicatorSMA25).Unwrap())
	suite.Equal(-0.3, set.Get(IndicatorMACDHist).Unwrap())
	suite.True(set.Get(IndicatorRSI).IsNone())
	suite.True(set.Get(IndicatorName("bogus")).IsNone())
}
