package engine

import (
	"github.com/shopspring/decimal"

	"github.com/quantfolio/stockdash-engine/internal/types"
	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

// portfolio is the mutable account state of one run. It enforces the account
// invariants on every mutation: cash never goes negative, the position never
// goes negative, and a sell never exceeds the held quantity. Strategies only
// ever see read-only snapshots.
type portfolio struct {
	cash          decimal.Decimal
	quantity      decimal.Decimal
	avgEntryPrice decimal.Decimal
	realizedPnL   decimal.Decimal
	totalFees     decimal.Decimal
}

func newPortfolio(initialCash float64) *portfolio {
	return &portfolio{
		cash: decimal.NewFromFloat(initialCash),
	}
}

// snapshot returns the read-only view handed to strategies and recorded on
// the equity curve.
func (p *portfolio) snapshot() types.PortfolioState {
	cash, _ := p.cash.Float64()
	quantity, _ := p.quantity.Float64()
	avgEntry, _ := p.avgEntryPrice.Float64()
	realized, _ := p.realizedPnL.Float64()
	fees, _ := p.totalFees.Float64()

	return types.PortfolioState{
		Cash:          cash,
		Quantity:      quantity,
		AvgEntryPrice: avgEntry,
		RealizedPnL:   realized,
		TotalFees:     fees,
	}
}

// buy debits cash for quantity shares at price plus cost and folds the cost
// into the average entry price.
func (p *portfolio) buy(quantity, price, cost float64) error {
	quantityDec := decimal.NewFromFloat(quantity)
	costDec := decimal.NewFromFloat(cost)
	notional := quantityDec.Mul(decimal.NewFromFloat(price))
	total := notional.Add(costDec)

	if total.GreaterThan(p.cash) {
		return errors.Newf(errors.ErrCodeNegativeCash,
			"buy of %s at total %s exceeds cash %s", quantityDec, total, p.cash)
	}

	// Average entry absorbs the transaction cost so realized PnL on the
	// closing sell nets out all fees paid.
	oldBasis := p.quantity.Mul(p.avgEntryPrice)
	newQuantity := p.quantity.Add(quantityDec)
	p.avgEntryPrice = oldBasis.Add(total).Div(newQuantity)

	p.cash = p.cash.Sub(total)
	p.quantity = newQuantity
	p.totalFees = p.totalFees.Add(costDec)

	return nil
}

// sell credits cash for quantity shares at price minus cost and books the
// realized PnL against the average entry price. It returns the PnL of the
// sale.
func (p *portfolio) sell(quantity, price, cost float64) (float64, error) {
	quantityDec := decimal.NewFromFloat(quantity)

	if quantityDec.GreaterThan(p.quantity) {
		return 0, errors.Newf(errors.ErrCodeNegativePosition,
			"sell of %s exceeds position %s", quantityDec, p.quantity)
	}

	costDec := decimal.NewFromFloat(cost)
	proceeds := quantityDec.Mul(decimal.NewFromFloat(price)).Sub(costDec)

	// The cost can exceed the sale's notional on a collapsed price. Such a
	// sale must not push cash below zero.
	if p.cash.Add(proceeds).IsNegative() {
		return 0, errors.Newf(errors.ErrCodeNegativeCash,
			"sale proceeds %s against cash %s would leave a negative balance", proceeds, p.cash)
	}

	basis := quantityDec.Mul(p.avgEntryPrice)
	pnl := proceeds.Sub(basis)

	p.cash = p.cash.Add(proceeds)
	p.quantity = p.quantity.Sub(quantityDec)
	p.realizedPnL = p.realizedPnL.Add(pnl)
	p.totalFees = p.totalFees.Add(costDec)

	if p.quantity.IsZero() {
		p.avgEntryPrice = decimal.Zero
	}

	pnlFloat, _ := pnl.Float64()

	return pnlFloat, nil
}

// equity is cash plus position marked at the given close.
func (p *portfolio) equity(close float64) float64 {
	equity, _ := p.cash.Add(p.quantity.Mul(decimal.NewFromFloat(close))).Float64()

	return equity
}

func (p *portfolio) hasPosition() bool {
	return p.quantity.IsPositive()
}
