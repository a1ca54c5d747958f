package strategy

import (
	"github.com/quantfolio/stockdash-engine/internal/types"
)

// MACD buys when the MACD histogram flips from non-positive to positive and
// sells on the opposite flip. The histogram is the distance between the MACD
// line and its signal line, so a sign flip marks the lines crossing.
type MACD struct{}

// NewMACD returns the MACD histogram flip strategy.
func NewMACD() *MACD {
	return &MACD{}
}

func (s *MACD) Name() string {
	return "macd"
}

func (s *MACD) RequiredIndicators() []types.IndicatorName {
	return []types.IndicatorName{types.IndicatorMACDHist}
}

func (s *MACD) Decide(history History, state types.PortfolioState) (types.Action, error) {
	return gate(s.signal(history), state), nil
}

func (s *MACD) signal(history History) types.ActionSide {
	prev, ok := history.Prev()
	if !ok {
		return types.ActionHold
	}

	curHist, err1 := history.Current().Indicators.MACDHist.Take()
	prevHist, err2 := prev.Indicators.MACDHist.Take()

	if err1 != nil || err2 != nil {
		return types.ActionHold
	}

	if prevHist <= 0 && curHist > 0 {
		return types.ActionBuy
	}

	if prevHist >= 0 && curHist < 0 {
		return types.ActionSell
	}

	return types.ActionHold
}
