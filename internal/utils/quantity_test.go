package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quantfolio/stockdash-engine/internal/backtest/engine/engine_v1/costmodel"
)

type QuantityTestSuite struct {
	suite.Suite
}

func TestQuantitySuite(t *testing.T) {
	suite.Run(t, new(QuantityTestSuite))
}

func (suite *QuantityTestSuite) TestCalculateMaxQuantityNoCost() {
	zero := costmodel.NewZeroCost()

	tests := []struct {
		name     string
		cash     float64
		price    float64
		expected float64
	}{
		{"even division", 1000, 100, 10},
		{"fractional result", 1000, 300, 1000.0 / 300.0},
		{"zero cash", 0, 100, 0},
		{"zero price", 1000, 0, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, CalculateMaxQuantity(tc.cash, tc.price, zero), 1e-9)
		})
	}
}

func (suite *QuantityTestSuite) TestCalculateMaxQuantityWithCost() {
	fixed := costmodel.NewFixedFee(10)

	qty := CalculateMaxQuantity(1000, 100, fixed)
	total := qty*100 + fixed.Calculate(qty, 100)

	// The refined quantity plus fee must fit in the budget.
	suite.LessOrEqual(total, 1000.0+1e-9)
	suite.Greater(qty, 9.0)
}

func (suite *QuantityTestSuite) TestCalculateQuantityForBudget() {
	zero := costmodel.NewZeroCost()

	suite.InDelta(9.5, CalculateQuantityForBudget(1000, 100, zero, 0.95), 1e-9)
	suite.Zero(CalculateQuantityForBudget(1000, 100, zero, 0))
	// Fractions above 1 are clamped to all-in.
	suite.InDelta(10.0, CalculateQuantityForBudget(1000, 100, zero, 2.0), 1e-9)
}

func (suite *QuantityTestSuite) TestRoundToDecimalPrecision() {
	tests := []struct {
		name      string
		quantity  float64
		precision int
		expected  float64
	}{
		{"whole shares", 10.99, 0, 10},
		{"one decimal", 10.99, 1, 10.9},
		{"two decimals", 10.999, 2, 10.99},
		{"already whole", 10, 0, 10},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, RoundToDecimalPrecision(tc.quantity, tc.precision), 1e-9)
		})
	}
}
