package engine

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

type PortfolioTestSuite struct {
	suite.Suite
}

func TestPortfolioSuite(t *testing.T) {
	suite.Run(t, new(PortfolioTestSuite))
}

func (suite *PortfolioTestSuite) TestBuyDebitsCashAndFees() {
	port := newPortfolio(10000)

	suite.Require().NoError(port.buy(10, 100, 5))

	state := port.snapshot()
	suite.InDelta(8995.0, state.Cash, 1e-9)
	suite.InDelta(10.0, state.Quantity, 1e-9)
	// Entry price absorbs the fee: (10*100 + 5) / 10.
	suite.InDelta(100.5, state.AvgEntryPrice, 1e-9)
	suite.InDelta(5.0, state.TotalFees, 1e-9)
}

func (suite *PortfolioTestSuite) TestBuyExceedingCashFails() {
	port := newPortfolio(500)

	err := port.buy(10, 100, 0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNegativeCash))

	// A failed buy leaves the portfolio untouched.
	state := port.snapshot()
	suite.Equal(500.0, state.Cash)
	suite.Equal(0.0, state.Quantity)
}

func (suite *PortfolioTestSuite) TestSellBooksPnLNetOfAllFees() {
	port := newPortfolio(10000)
	suite.Require().NoError(port.buy(10, 100, 5))

	pnl, err := port.sell(10, 110, 5)
	suite.Require().NoError(err)
	// Proceeds 1095 against basis 1005.
	suite.InDelta(90.0, pnl, 1e-9)

	state := port.snapshot()
	suite.InDelta(10090.0, state.Cash, 1e-9)
	suite.Equal(0.0, state.Quantity)
	suite.Equal(0.0, state.AvgEntryPrice)
	suite.InDelta(90.0, state.RealizedPnL, 1e-9)
	suite.InDelta(10.0, state.TotalFees, 1e-9)
}

func (suite *PortfolioTestSuite) TestSellBeyondPositionFails() {
	port := newPortfolio(10000)
	suite.Require().NoError(port.buy(5, 100, 0))

	_, err := port.sell(6, 100, 0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNegativePosition))
	suite.InDelta(5.0, port.snapshot().Quantity, 1e-9)
}

func (suite *PortfolioTestSuite) TestSellWithCostAboveProceedsFails() {
	port := newPortfolio(1000)
	suite.Require().NoError(port.buy(9, 100, 0))

	// Net proceeds are 4 - 25 = -21 against 100 remaining cash: allowed.
	pnl, err := port.sell(4, 1, 25)
	suite.Require().NoError(err)
	suite.InDelta(-421.0, pnl, 1e-9)
	suite.InDelta(79.0, port.snapshot().Cash, 1e-9)

	// Now the fee would push cash below zero: rejected, state untouched.
	_, err = port.sell(5, 1, 100)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNegativeCash))

	state := port.snapshot()
	suite.InDelta(79.0, state.Cash, 1e-9)
	suite.InDelta(5.0, state.Quantity, 1e-9)
}

func (suite *PortfolioTestSuite) TestPartialSellKeepsEntryPrice() {
	port := newPortfolio(10000)
	suite.Require().NoError(port.buy(10, 100, 0))

	_, err := port.sell(4, 105, 0)
	suite.Require().NoError(err)

	state := port.snapshot()
	suite.InDelta(6.0, state.Quantity, 1e-9)
	suite.InDelta(100.0, state.AvgEntryPrice, 1e-9)
}

func (suite *PortfolioTestSuite) TestAveragingUp() {
	port := newPortfolio(10000)
	suite.Require().NoError(port.buy(10, 100, 0))
	suite.Require().NoError(port.buy(10, 110, 0))

	state := port.snapshot()
	suite.InDelta(20.0, state.Quantity, 1e-9)
	suite.InDelta(105.0, state.AvgEntryPrice, 1e-9)
}

func (suite *PortfolioTestSuite) TestEquityMarksToClose() {
	port := newPortfolio(10000)
	suite.Require().NoError(port.buy(10, 100, 0))

	suite.InDelta(10000.0, port.equity(100), 1e-9)
	suite.InDelta(10200.0, port.equity(120), 1e-9)
	suite.True(port.hasPosition())
}

func (suite *PortfolioTestSuite) TestNoFloatDust() {
	// Classic binary float trap: 0.1 + 0.2 style accumulation.
	port := newPortfolio(1)

	suite.Require().NoError(port.buy(1, 0.1, 0))
	suite.Require().NoError(port.buy(1, 0.2, 0))

	state := port.snapshot()
	suite.Equal(0.7, state.Cash)
	suite.InDelta(0.15, state.AvgEntryPrice, 1e-12)
}
