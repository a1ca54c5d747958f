package strategy

import (
	"github.com/quantfolio/stockdash-engine/internal/types"
)

// Default RSI thresholds used by the dashboard for daily bars.
const (
	rsiOversold   = 35.0
	rsiOverbought = 65.0
)

// RSI buys when the relative strength index is at or below the oversold
// threshold and sells when it is at or above the overbought threshold.
type RSI struct {
	oversold   float64
	overbought float64
}

// NewRSI returns the RSI strategy with the default 35/65 thresholds.
func NewRSI() *RSI {
	return &RSI{oversold: rsiOversold, overbought: rsiOverbought}
}

func (s *RSI) Name() string {
	return "rsi"
}

func (s *RSI) RequiredIndicators() []types.IndicatorName {
	return []types.IndicatorName{types.IndicatorRSI}
}

func (s *RSI) Decide(history History, state types.PortfolioState) (types.Action, error) {
	return gate(s.signal(history), state), nil
}

func (s *RSI) signal(history History) types.ActionSide {
	value, err := history.Current().Indicators.RSI.Take()
	if err != nil {
		return types.ActionHold
	}

	if value <= s.oversold {
		return types.ActionBuy
	}

	if value >= s.overbought {
		return types.ActionSell
	}

	return types.ActionHold
}
