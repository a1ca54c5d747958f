package strategy

import (
	"github.com/quantfolio/stockdash-engine/internal/types"
)

// Bollinger is a mean-reversion strategy: it buys when the close touches or
// pierces the lower band and sells when the close touches or pierces the
// upper band.
type Bollinger struct{}

// NewBollinger returns the Bollinger band touch strategy.
func NewBollinger() *Bollinger {
	return &Bollinger{}
}

func (s *Bollinger) Name() string {
	return "bollinger"
}

func (s *Bollinger) RequiredIndicators() []types.IndicatorName {
	return []types.IndicatorName{types.IndicatorBBUpper, types.IndicatorBBLower}
}

func (s *Bollinger) Decide(history History, state types.PortfolioState) (types.Action, error) {
	return gate(s.signal(history), state), nil
}

func (s *Bollinger) signal(history History) types.ActionSide {
	bar := history.Current()

	lower, err1 := bar.Indicators.BBLower.Take()
	upper, err2 := bar.Indicators.BBUpper.Take()

	if err1 != nil || err2 != nil {
		return types.ActionHold
	}

	if bar.Close <= lower {
		return types.ActionBuy
	}

	if bar.Close >= upper {
		return types.ActionSell
	}

	return types.ActionHold
}
