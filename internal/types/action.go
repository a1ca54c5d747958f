package types

// ActionSide is the decision a strategy makes for one bar.
type ActionSide string

const (
	ActionBuy  ActionSide = "BUY"
	ActionSell ActionSide = "SELL"
	ActionHold ActionSide = "HOLD"
)

const (
	// ReasonStrategy marks a trade that was requested by the strategy itself.
	ReasonStrategy = "strategy"
	// ReasonCloseAtEnd marks the final closing trade emitted when the engine is
	// configured to flatten any open position on the last bar.
	ReasonCloseAtEnd = "close_at_end"
	// ReasonInsufficientCash is logged when a buy cannot be honored.
	ReasonInsufficientCash = "insufficient_cash"
	// ReasonNoPosition is logged when a sell arrives with nothing held.
	ReasonNoPosition = "no_position"
	// ReasonZeroQuantity is logged when sizing rounds the quantity to zero.
	ReasonZeroQuantity = "zero_quantity"
	// ReasonEndOfData is logged when a next-open fill has no next bar.
	ReasonEndOfData = "end_of_data"
)

// Action is a strategy's decision for a single bar: buy or sell some fraction,
// or hold. Actions only describe intent; the engine owns execution.
type Action struct {
	Side ActionSide `json:"side" yaml:"side"`
	// Fraction is the portion of available cash (buy) or held position (sell)
	// the strategy wants to commit, in (0, 1]. Ignored for Hold and for the
	// fixed-quantity sizing policy.
	Fraction float64 `json:"fraction" yaml:"fraction"`
	// Reason is a short human-readable cause carried into the trade log.
	Reason string `json:"reason" yaml:"reason"`
}

// Hold returns the no-op action.
func Hold() Action {
	return Action{Side: ActionHold, Fraction: 0, Reason: ""}
}

// Buy returns a buy action committing the given fraction of available cash.
func Buy(fraction float64, reason string) Action {
	return Action{Side: ActionBuy, Fraction: fraction, Reason: reason}
}

// Sell returns a sell action releasing the given fraction of the held position.
func Sell(fraction float64, reason string) Action {
	return Action{Side: ActionSell, Fraction: fraction, Reason: reason}
}

// SellAll returns a sell action that closes the whole position.
func SellAll(reason string) Action {
	return Sell(1.0, reason)
}

// IsHold reports whether the action is a no-op.
func (a Action) IsHold() bool {
	return a.Side == ActionHold
}
