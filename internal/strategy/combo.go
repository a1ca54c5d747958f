package strategy

import (
	"github.com/quantfolio/stockdash-engine/internal/types"
)

const comboThreshold = 0.4

// comboWeight pairs a component strategy with its share of the vote.
type comboWeight struct {
	strategy signaler
	weight   float64
}

// Combo aggregates the four component strategies into a weighted vote. Each
// component adds its weight to the buy or sell score depending on its raw
// signal; a side fires when its score clears the threshold and beats the
// opposite score. An exact tie holds.
type Combo struct {
	components []comboWeight
	required   []types.IndicatorName
}

// NewCombo returns the weighted combo strategy: moving average cross 0.35,
// RSI 0.25, MACD 0.25, Bollinger 0.15.
func NewCombo() *Combo {
	goldenCross := NewGoldenCross()
	rsi := NewRSI()
	macd := NewMACD()
	bollinger := NewBollinger()

	required := make([]types.IndicatorName, 0, 8)
	seen := make(map[types.IndicatorName]bool)

	for _, s := range []Strategy{goldenCross, rsi, macd, bollinger} {
		for _, name := range s.RequiredIndicators() {
			if !seen[name] {
				seen[name] = true
				required = append(required, name)
			}
		}
	}

	return &Combo{
		components: []comboWeight{
			{strategy: goldenCross, weight: 0.35},
			{strategy: rsi, weight: 0.25},
			{strategy: macd, weight: 0.25},
			{strategy: bollinger, weight: 0.15},
		},
		required: required,
	}
}

func (s *Combo) Name() string {
	return "combo"
}

func (s *Combo) RequiredIndicators() []types.IndicatorName {
	return s.required
}

func (s *Combo) Decide(history History, state types.PortfolioState) (types.Action, error) {
	return gate(s.signal(history), state), nil
}

func (s *Combo) signal(history History) types.ActionSide {
	var buyScore, sellScore float64

	for _, c := range s.components {
		switch c.strategy.signal(history) {
		case types.ActionBuy:
			buyScore += c.weight
		case types.ActionSell:
			sellScore += c.weight
		}
	}

	buys := buyScore >= comboThreshold
	sells := sellScore >= comboThreshold

	switch {
	case buys && sells:
		if buyScore > sellScore {
			return types.ActionBuy
		}
		if sellScore > buyScore {
			return types.ActionSell
		}
		return types.ActionHold
	case buys:
		return types.ActionBuy
	case sells:
		return types.ActionSell
	default:
		return types.ActionHold
	}
}
