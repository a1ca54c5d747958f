package types

import "time"

// Trade is one executed action. The trade log is append-only with one entry
// per executed (non-hold, non-degraded) action.
type Trade struct {
	// ID is a unique identifier for the trade within a run.
	ID string `json:"id" yaml:"id" csv:"id"`
	// BarIndex is the index of the bar the fill happened on. With the
	// next-open fill policy this is the bar after the signal bar.
	BarIndex int `json:"bar_index" yaml:"bar_index" csv:"bar_index"`
	// SignalBarIndex is the index of the bar the decision was made on.
	SignalBarIndex int        `json:"signal_bar_index" yaml:"signal_bar_index" csv:"signal_bar_index"`
	Time           time.Time  `json:"time" yaml:"time" csv:"time"`
	Side           ActionSide `json:"side" yaml:"side" csv:"side"`
	Quantity       float64    `json:"quantity" yaml:"quantity" csv:"quantity"`
	FillPrice      float64    `json:"fill_price" yaml:"fill_price" csv:"fill_price"`
	// Cost is the transaction cost charged for this fill.
	Cost float64 `json:"cost" yaml:"cost" csv:"cost"`
	// RealizedPnL is the profit/loss booked by this trade. Zero for buys;
	// for sells it is (fill - avg entry) * quantity - cost.
	RealizedPnL float64 `json:"realized_pnl" yaml:"realized_pnl" csv:"realized_pnl"`
	// Reason is the strategy-supplied cause for the trade.
	Reason string `json:"reason" yaml:"reason" csv:"reason"`
	// StrategyName is the name of the strategy that requested the trade.
	StrategyName string `json:"strategy_name" yaml:"strategy_name" csv:"strategy_name"`
}

// RejectedAction records a strategy action the portfolio could not honor.
// The engine degrades such actions to hold and continues the run; rejections
// are data, not errors.
type RejectedAction struct {
	BarIndex int        `json:"bar_index" yaml:"bar_index" csv:"bar_index"`
	Time     time.Time  `json:"time" yaml:"time" csv:"time"`
	Side     ActionSide `json:"side" yaml:"side" csv:"side"`
	// Reason is one of the Reason* constants explaining the rejection.
	Reason string `json:"reason" yaml:"reason" csv:"reason"`
	// Message carries detail for the log, e.g. the requested and available amounts.
	Message string `json:"message" yaml:"message" csv:"message"`
}

// IsClosing reports whether the trade realizes profit/loss.
func (t Trade) IsClosing() bool {
	return t.Side == ActionSell
}
