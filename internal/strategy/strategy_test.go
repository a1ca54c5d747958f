package strategy

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantfolio/stockdash-engine/internal/types"
	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

type StrategyTestSuite struct {
	suite.Suite

	flat types.PortfolioState
	long types.PortfolioState
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.flat = types.PortfolioState{Cash: 10000}
	suite.long = types.PortfolioState{Cash: 500, Quantity: 10, AvgEntryPrice: 95}
}

// bar builds a bar at the given close and lets the caller fill in the
// indicator columns relevant to the test.
func bar(close float64, fill func(set *types.IndicatorSet)) types.Bar {
	b := types.Bar{
		Time:   time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Open:   close,
		High:   close + 1,
		Low:    close - 1,
		Close:  close,
		Volume: 1000,
	}
	if fill != nil {
		fill(&b.Indicators)
	}
	return b
}

func history(bars ...types.Bar) History {
	return NewHistory(types.BarSeries(bars))
}

func (suite *StrategyTestSuite) TestGoldenCross() {
	crossUp := history(
		bar(100, func(set *types.IndicatorSet) {
			set.SMA25 = optional.Some(99.0)
			set.SMA75 = optional.Some(100.0)
		}),
		bar(101, func(set *types.IndicatorSet) {
			set.SMA25 = optional.Some(101.0)
			set.SMA75 = optional.Some(100.0)
		}),
	)
	crossDown := history(
		bar(100, func(set *types.IndicatorSet) {
			set.SMA25 = optional.Some(101.0)
			set.SMA75 = optional.Some(100.0)
		}),
		bar(99, func(set *types.IndicatorSet) {
			set.SMA25 = optional.Some(99.0)
			set.SMA75 = optional.Some(100.0)
		}),
	)
	noCross := history(
		bar(100, func(set *types.IndicatorSet) {
			set.SMA25 = optional.Some(101.0)
			set.SMA75 = optional.Some(100.0)
		}),
		bar(101, func(set *types.IndicatorSet) {
			set.SMA25 = optional.Some(102.0)
			set.SMA75 = optional.Some(100.0)
		}),
	)

	s := NewGoldenCross()

	testCases := []struct {
		name    string
		history History
		state   types.PortfolioState
		want    types.ActionSide
	}{
		{name: "cross up while flat buys", history: crossUp, state: suite.flat, want: types.ActionBuy},
		{name: "cross up while long holds", history: crossUp, state: suite.long, want: types.ActionHold},
		{name: "cross down while long sells", history: crossDown, state: suite.long, want: types.ActionSell},
		{name: "cross down while flat holds", history: crossDown, state: suite.flat, want: types.ActionHold},
		{name: "no cross holds", history: noCross, state: suite.flat, want: types.ActionHold},
		{name: "single bar holds", history: history(bar(100, nil)), state: suite.flat, want: types.ActionHold},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			action, err := s.Decide(tc.history, tc.state)
			suite.Require().NoError(err)
			suite.Equal(tc.want, action.Side)
		})
	}
}

func (suite *StrategyTestSuite) TestGoldenCrossMissingIndicators() {
	h := history(
		bar(100, nil),
		bar(101, func(set *types.IndicatorSet) {
			set.SMA25 = optional.Some(101.0)
			set.SMA75 = optional.Some(100.0)
		}),
	)

	action, err := NewGoldenCross().Decide(h, suite.flat)
	suite.Require().NoError(err)
	suite.True(action.IsHold())
}

func (suite *StrategyTestSuite) TestRSI() {
	withRSI := func(value float64) History {
		return history(bar(100, func(set *types.IndicatorSet) {
			set.RSI = optional.Some(value)
		}))
	}

	s := NewRSI()

	testCases := []struct {
		name    string
		history History
		state   types.PortfolioState
		want    types.ActionSide
	}{
		{name: "oversold while flat buys", history: withRSI(30), state: suite.flat, want: types.ActionBuy},
		{name: "oversold while long holds", history: withRSI(30), state: suite.long, want: types.ActionHold},
		{name: "overbought while long sells", history: withRSI(70), state: suite.long, want: types.ActionSell},
		{name: "neutral holds", history: withRSI(50), state: suite.flat, want: types.ActionHold},
		{name: "oversold threshold is inclusive", history: withRSI(35), state: suite.flat, want: types.ActionBuy},
		{name: "overbought threshold is inclusive", history: withRSI(65), state: suite.long, want: types.ActionSell},
		{name: "just inside the neutral band holds", history: withRSI(35.01), state: suite.flat, want: types.ActionHold},
		{name: "missing column holds", history: history(bar(100, nil)), state: suite.flat, want: types.ActionHold},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			action, err := s.Decide(tc.history, tc.state)
			suite.Require().NoError(err)
			suite.Equal(tc.want, action.Side)
		})
	}
}

func (suite *StrategyTestSuite) TestMACD() {
	flip := func(prevHist, curHist float64) History {
		return history(
			bar(100, func(set *types.IndicatorSet) {
				set.MACDHist = optional.Some(prevHist)
			}),
			bar(101, func(set *types.IndicatorSet) {
				set.MACDHist = optional.Some(curHist)
			}),
		)
	}

	s := NewMACD()

	testCases := []struct {
		name    string
		history History
		state   types.PortfolioState
		want    types.ActionSide
	}{
		{name: "flip to positive buys", history: flip(-0.5, 0.5), state: suite.flat, want: types.ActionBuy},
		{name: "flip from zero buys", history: flip(0, 0.5), state: suite.flat, want: types.ActionBuy},
		{name: "flip to negative sells", history: flip(0.5, -0.5), state: suite.long, want: types.ActionSell},
		{name: "stays positive holds", history: flip(0.5, 0.7), state: suite.flat, want: types.ActionHold},
		{name: "stays negative holds", history: flip(-0.5, -0.3), state: suite.long, want: types.ActionHold},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			action, err := s.Decide(tc.history, tc.state)
			suite.Require().NoError(err)
			suite.Equal(tc.want, action.Side)
		})
	}
}

func (suite *StrategyTestSuite) TestBollinger() {
	banded := func(close, lower, upper float64) History {
		return history(bar(close, func(set *types.IndicatorSet) {
			set.BBLower = optional.Some(lower)
			set.BBUpper = optional.Some(upper)
		}))
	}

	s := NewBollinger()

	testCases := []struct {
		name    string
		history History
		state   types.PortfolioState
		want    types.ActionSide
	}{
		{name: "touch lower while flat buys", history: banded(95, 95, 105), state: suite.flat, want: types.ActionBuy},
		{name: "pierce lower while flat buys", history: banded(94, 95, 105), state: suite.flat, want: types.ActionBuy},
		{name: "touch upper while long sells", history: banded(105, 95, 105), state: suite.long, want: types.ActionSell},
		{name: "inside bands holds", history: banded(100, 95, 105), state: suite.flat, want: types.ActionHold},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			action, err := s.Decide(tc.history, tc.state)
			suite.Require().NoError(err)
			suite.Equal(tc.want, action.Side)
		})
	}
}

// comboBars builds a two bar history where each component signal can be
// steered independently.
func comboBars(maSide, macdSide, rsiSide, bbSide types.ActionSide) History {
	prev := bar(100, func(set *types.IndicatorSet) {
		switch maSide {
		case types.ActionBuy:
			set.SMA25 = optional.Some(99.0)
			set.SMA75 = optional.Some(100.0)
		case types.ActionSell:
			set.SMA25 = optional.Some(101.0)
			set.SMA75 = optional.Some(100.0)
		default:
			set.SMA25 = optional.Some(102.0)
			set.SMA75 = optional.Some(100.0)
		}

		switch macdSide {
		case types.ActionBuy:
			set.MACDHist = optional.Some(-0.5)
		case types.ActionSell:
			set.MACDHist = optional.Some(0.5)
		default:
			set.MACDHist = optional.Some(0.5)
		}
	})

	cur := bar(100, func(set *types.IndicatorSet) {
		switch maSide {
		case types.ActionBuy:
			set.SMA25 = optional.Some(101.0)
			set.SMA75 = optional.Some(100.0)
		case types.ActionSell:
			set.SMA25 = optional.Some(99.0)
			set.SMA75 = optional.Some(100.0)
		default:
			set.SMA25 = optional.Some(102.0)
			set.SMA75 = optional.Some(100.0)
		}

		switch macdSide {
		case types.ActionBuy:
			set.MACDHist = optional.Some(0.5)
		case types.ActionSell:
			set.MACDHist = optional.Some(-0.5)
		default:
			set.MACDHist = optional.Some(0.7)
		}

		switch rsiSide {
		case types.ActionBuy:
			set.RSI = optional.Some(30.0)
		case types.ActionSell:
			set.RSI = optional.Some(70.0)
		default:
			set.RSI = optional.Some(50.0)
		}

		switch bbSide {
		case types.ActionBuy:
			set.BBLower = optional.Some(100.0)
			set.BBUpper = optional.Some(110.0)
		case types.ActionSell:
			set.BBLower = optional.Some(90.0)
			set.BBUpper = optional.Some(100.0)
		default:
			set.BBLower = optional.Some(90.0)
			set.BBUpper = optional.Some(110.0)
		}
	})

	return history(prev, cur)
}

func (suite *StrategyTestSuite) TestCombo() {
	s := NewCombo()

	testCases := []struct {
		name string
		ma   types.ActionSide
		macd types.ActionSide
		rsi  types.ActionSide
		bb   types.ActionSide
		want types.ActionSide
	}{
		// ma 0.35 + rsi 0.25 = 0.60 clears the 0.40 threshold.
		{name: "ma and rsi agree on buy", ma: types.ActionBuy, macd: types.ActionHold, rsi: types.ActionBuy, bb: types.ActionHold, want: types.ActionBuy},
		// bollinger alone is 0.15, below threshold.
		{name: "bollinger alone holds", ma: types.ActionHold, macd: types.ActionHold, rsi: types.ActionHold, bb: types.ActionBuy, want: types.ActionHold},
		// macd alone is 0.25, below threshold.
		{name: "macd alone holds", ma: types.ActionHold, macd: types.ActionSell, rsi: types.ActionHold, bb: types.ActionHold, want: types.ActionHold},
		// rsi 0.25 + bb 0.15 = 0.40 hits the threshold exactly.
		{name: "rsi and bollinger sell at threshold", ma: types.ActionHold, macd: types.ActionHold, rsi: types.ActionSell, bb: types.ActionSell, want: types.ActionSell},
		// buy 0.60 beats sell 0.40 when both sides clear.
		{name: "higher score wins", ma: types.ActionBuy, macd: types.ActionBuy, rsi: types.ActionSell, bb: types.ActionSell, want: types.ActionBuy},
		// buy 0.50 versus sell 0.50 is an exact tie.
		{name: "exact tie holds", ma: types.ActionBuy, macd: types.ActionSell, rsi: types.ActionSell, bb: types.ActionBuy, want: types.ActionHold},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			h := comboBars(tc.ma, tc.macd, tc.rsi, tc.bb)

			state := suite.flat
			if tc.want == types.ActionSell {
				state = suite.long
			}

			action, err := s.Decide(h, state)
			suite.Require().NoError(err)
			suite.Equal(tc.want, action.Side)
		})
	}
}

func (suite *StrategyTestSuite) TestComboRequiredIndicators() {
	required := NewCombo().RequiredIndicators()

	suite.Contains(required, types.IndicatorSMA25)
	suite.Contains(required, types.IndicatorSMA75)
	suite.Contains(required, types.IndicatorRSI)
	suite.Contains(required, types.IndicatorMACDHist)
	suite.Contains(required, types.IndicatorBBUpper)
	suite.Contains(required, types.IndicatorBBLower)
}

func (suite *StrategyTestSuite) TestRegistry() {
	for _, name := range []string{"golden_cross", "rsi", "macd", "bollinger", "combo"} {
		s, err := Get(name)
		suite.Require().NoError(err)
		suite.Equal(name, s.Name())
	}

	_, err := Get("momentum")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyNotFound))

	suite.Equal([]string{"bollinger", "combo", "golden_cross", "macd", "rsi"}, Names())
}

func (suite *StrategyTestSuite) TestRegistryReturnsFreshInstances() {
	a, err := Get("rsi")
	suite.Require().NoError(err)
	b, err := Get("rsi")
	suite.Require().NoError(err)
	suite.NotSame(a, b)
}

func (suite *StrategyTestSuite) TestDeterminism() {
	h := comboBars(types.ActionBuy, types.ActionBuy, types.ActionHold, types.ActionHold)
	s := NewCombo()

	first, err := s.Decide(h, suite.flat)
	suite.Require().NoError(err)

	for i := 0; i < 5; i++ {
		again, err := s.Decide(h, suite.flat)
		suite.Require().NoError(err)
		suite.Equal(first, again)
	}
}
