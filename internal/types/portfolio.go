package types

import "github.com/shopspring/decimal"

// PortfolioState is a snapshot of the simulated portfolio. The simulation
// engine owns the state for the duration of one run; strategies receive a copy
// per bar and can only read it.
type PortfolioState struct {
	// Cash is the current cash balance. Never negative.
	Cash float64 `json:"cash" yaml:"cash"`
	// Quantity is the current position size in shares. Never negative
	// (no shorting).
	Quantity float64 `json:"quantity" yaml:"quantity"`
	// AvgEntryPrice is the average entry price of the open position including
	// transaction costs. Zero when flat.
	AvgEntryPrice float64 `json:"avg_entry_price" yaml:"avg_entry_price"`
	// RealizedPnL is the cumulative realized profit/loss of closed trades.
	RealizedPnL float64 `json:"realized_pnl" yaml:"realized_pnl"`
	// TotalFees is the cumulative transaction cost paid.
	TotalFees float64 `json:"total_fees" yaml:"total_fees"`
}

// HasPosition reports whether any shares are currently held.
func (p PortfolioState) HasPosition() bool {
	return p.Quantity > 0
}

// Equity is cash plus the mark-to-market value of the position at the
// given close price.
func (p PortfolioState) Equity(close float64) float64 {
	positionDec := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(close))
	equity, _ := decimal.NewFromFloat(p.Cash).Add(positionDec).Float64()

	return equity
}

// UnrealizedPnL is the open position's profit/loss against its average entry
// price at the given close price. Zero when flat.
func (p PortfolioState) UnrealizedPnL(close float64) float64 {
	if p.Quantity == 0 {
		return 0
	}

	entryDec := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(p.AvgEntryPrice))
	markDec := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(close))
	pnl, _ := markDec.Sub(entryDec).Float64()

	return pnl
}
