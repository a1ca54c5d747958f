// Package strategy holds the trading strategies the simulation engine can
// run. A strategy sees only the bars up to and including the current one and
// the current portfolio state, and answers with a buy, sell, or hold intent.
// Execution, sizing, and cost accounting belong to the engine.
package strategy

import (
	"github.com/quantfolio/stockdash-engine/internal/types"
)

// History is the causal view of the series a strategy receives: bars from the
// start of the run up to and including the bar being decided. A strategy can
// never observe a bar past Current.
type History struct {
	bars types.BarSeries
}

// NewHistory wraps the first n bars of a series. The last bar is the one the
// strategy is deciding on.
func NewHistory(bars types.BarSeries) History {
	return History{bars: bars}
}

// Len returns the number of visible bars.
func (h History) Len() int {
	return len(h.bars)
}

// At returns the bar at index i, counting from the start of the run.
func (h History) At(i int) types.Bar {
	return h.bars[i]
}

// Current returns the bar being decided on.
func (h History) Current() types.Bar {
	return h.bars[len(h.bars)-1]
}

// Prev returns the bar before the current one, or false when the current bar
// is the first of the run.
func (h History) Prev() (types.Bar, bool) {
	if len(h.bars) < 2 {
		return types.Bar{}, false
	}
	return h.bars[len(h.bars)-2], true
}

// Strategy decides one action per bar. Implementations must be deterministic:
// the same history and state always produce the same action.
type Strategy interface {
	// Name returns the registry identifier of the strategy.
	Name() string
	// RequiredIndicators lists the indicator columns the strategy reads. The
	// engine verifies them against the series before a run starts.
	RequiredIndicators() []types.IndicatorName
	// Decide returns the action for the current bar of the history.
	Decide(history History, state types.PortfolioState) (types.Action, error)
}

// signaler is the raw directional view of a strategy, before position
// gating. The combo strategy polls these to build its weighted vote.
type signaler interface {
	signal(history History) types.ActionSide
}

// gate turns a raw directional signal into an action consistent with the
// portfolio: buys only fire flat, sells only fire with a position held.
func gate(side types.ActionSide, state types.PortfolioState) types.Action {
	switch side {
	case types.ActionBuy:
		if state.HasPosition() {
			return types.Hold()
		}
		return types.Buy(1, types.ReasonStrategy)
	case types.ActionSell:
		if !state.HasPosition() {
			return types.Hold()
		}
		return types.SellAll(types.ReasonStrategy)
	default:
		return types.Hold()
	}
}
