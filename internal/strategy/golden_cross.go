package strategy

import (
	"github.com/quantfolio/stockdash-engine/internal/types"
)

// GoldenCross buys when the mid moving average crosses above the long one and
// sells on the opposite cross. Crosses are detected between the previous bar
// and the current bar, so a signal fires exactly once per cross.
type GoldenCross struct{}

// NewGoldenCross returns the golden cross strategy over the 25/75 SMA pair.
func NewGoldenCross() *GoldenCross {
	return &GoldenCross{}
}

func (s *GoldenCross) Name() string {
	return "golden_cross"
}

func (s *GoldenCross) RequiredIndicators() []types.IndicatorName {
	return []types.IndicatorName{types.IndicatorSMA25, types.IndicatorSMA75}
}

func (s *GoldenCross) Decide(history History, state types.PortfolioState) (types.Action, error) {
	return gate(s.signal(history), state), nil
}

func (s *GoldenCross) signal(history History) types.ActionSide {
	prev, ok := history.Prev()
	if !ok {
		return types.ActionHold
	}

	cur := history.Current().Indicators

	curMid, err1 := cur.SMA25.Take()
	curLong, err2 := cur.SMA75.Take()
	prevMid, err3 := prev.Indicators.SMA25.Take()
	prevLong, err4 := prev.Indicators.SMA75.Take()

	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return types.ActionHold
	}

	if prevMid <= prevLong && curMid > curLong {
		return types.ActionBuy
	}

	if prevMid >= prevLong && curMid < curLong {
		return types.ActionSell
	}

	return types.ActionHold
}
